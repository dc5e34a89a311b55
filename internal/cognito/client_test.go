package cognito

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type fakeUserPool struct {
	session   string
	code      string
	authInput *cognitoidentityprovider.InitiateAuthInput
	created   *cognitoidentityprovider.AdminCreateUserInput
	createErr error
}

func (f *fakeUserPool) InitiateAuth(_ context.Context, in *cognitoidentityprovider.InitiateAuthInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	f.authInput = in
	return &cognitoidentityprovider.InitiateAuthOutput{Session: aws.String(f.session)}, nil
}

func (f *fakeUserPool) RespondToAuthChallenge(_ context.Context, in *cognitoidentityprovider.RespondToAuthChallengeInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.RespondToAuthChallengeOutput, error) {
	if in.ChallengeResponses["EMAIL_OTP_CODE"] != f.code {
		return nil, &types.CodeMismatchException{}
	}
	return &cognitoidentityprovider.RespondToAuthChallengeOutput{
		AuthenticationResult: &types.AuthenticationResultType{},
	}, nil
}

func (f *fakeUserPool) AdminCreateUser(_ context.Context, in *cognitoidentityprovider.AdminCreateUserInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error) {
	f.created = in
	return &cognitoidentityprovider.AdminCreateUserOutput{}, f.createErr
}

func TestRegionFromPoolID(t *testing.T) {
	region, err := regionFromPoolID("us-east-2_AbCdEf123")
	if err != nil {
		t.Fatalf("regionFromPoolID: %v", err)
	}
	if region != "us-east-2" {
		t.Fatalf("region = %q", region)
	}

	for _, bad := range []string{"", "nounderscore", "_missingregion"} {
		if _, err := regionFromPoolID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestMapCognitoError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"throttled", &types.TooManyRequestsException{}, ErrCognitoThrottled},
		{"not authorized", &types.NotAuthorizedException{}, ErrCognitoNotAuthorized},
		{"expired", &types.ExpiredCodeException{}, ErrCognitoExpiredCode},
		{"mismatch", &types.CodeMismatchException{}, ErrCognitoCodeMismatch},
		{"exists", &types.UsernameExistsException{}, ErrCognitoUserExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapCognitoError(tt.err); !errors.Is(got, tt.want) {
				t.Fatalf("mapCognitoError = %v, want %v", got, tt.want)
			}
		})
	}

	plain := errors.New("network down")
	if got := mapCognitoError(plain); got != plain {
		t.Fatalf("expected unmapped error to pass through")
	}
}

func TestEmailOTPFlow(t *testing.T) {
	pool := &fakeUserPool{session: "sess-1", code: "123456"}
	client := newClient(pool, "us-east-1_pool", "client-1")
	ctx := context.Background()

	session, err := client.InitiateEmailOTP(ctx, "player@test.com")
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if session != "sess-1" {
		t.Fatalf("session = %q", session)
	}
	if pool.authInput.AuthParameters["USERNAME"] != "player@test.com" || aws.ToString(pool.authInput.ClientId) != "client-1" {
		t.Fatalf("unexpected auth input %+v", pool.authInput)
	}

	if err := client.VerifyEmailOTP(ctx, session, "player@test.com", "000000"); !errors.Is(err, ErrCognitoCodeMismatch) {
		t.Fatalf("expected ErrCognitoCodeMismatch, got %v", err)
	}
	if err := client.VerifyEmailOTP(ctx, session, "player@test.com", "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	pool.session = ""
	if _, err := client.InitiateEmailOTP(ctx, "player@test.com"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestCreateUser(t *testing.T) {
	pool := &fakeUserPool{}
	client := newClient(pool, "us-east-1_pool", "client-1")

	if err := client.CreateUser(context.Background(), "player@test.com"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if aws.ToString(pool.created.UserPoolId) != "us-east-1_pool" || pool.created.MessageAction != types.MessageActionTypeSuppress {
		t.Fatalf("unexpected create input %+v", pool.created)
	}

	pool.createErr = &types.UsernameExistsException{}
	if err := client.CreateUser(context.Background(), "player@test.com"); !errors.Is(err, ErrCognitoUserExists) {
		t.Fatalf("expected ErrCognitoUserExists, got %v", err)
	}
}
