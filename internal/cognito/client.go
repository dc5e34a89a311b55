package cognito

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

var (
	ErrCognitoThrottled     = errors.New("cognito throttling")
	ErrCognitoNotAuthorized = errors.New("cognito not authorized")
	ErrCognitoExpiredCode   = errors.New("cognito code expired")
	ErrCognitoCodeMismatch  = errors.New("cognito code mismatch")
	ErrCognitoUserExists    = errors.New("cognito user already exists")
	ErrNoSession            = errors.New("cognito returned no session")
)

// userPoolAPI is the part of the Cognito SDK client used for email sign-in.
type userPoolAPI interface {
	InitiateAuth(ctx context.Context, in *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, in *cognitoidentityprovider.RespondToAuthChallengeInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.RespondToAuthChallengeOutput, error)
	AdminCreateUser(ctx context.Context, in *cognitoidentityprovider.AdminCreateUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error)
}

// CognitoClient runs passwordless email sign-in against a Cognito user pool.
type CognitoClient struct {
	api      userPoolAPI
	poolID   string
	clientID string
}

// NewClient builds a client for poolID, whose prefix ("us-east-1_...") is
// the AWS region.
func NewClient(poolID, clientID string) (*CognitoClient, error) {
	region, err := regionFromPoolID(poolID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("cognito client id is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newClient(cognitoidentityprovider.NewFromConfig(awsCfg), poolID, clientID), nil
}

func newClient(api userPoolAPI, poolID, clientID string) *CognitoClient {
	return &CognitoClient{api: api, poolID: poolID, clientID: clientID}
}

// InitiateEmailOTP starts the EMAIL_OTP flow and returns the session token
// that VerifyEmailOTP needs.
func (c *CognitoClient) InitiateEmailOTP(ctx context.Context, email string) (string, error) {
	out, err := c.api.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME":            email,
			"PREFERRED_CHALLENGE": "EMAIL_OTP",
		},
	})
	if err != nil {
		return "", mapCognitoError(err)
	}
	session := aws.ToString(out.Session)
	if session == "" {
		return "", ErrNoSession
	}
	return session, nil
}

// VerifyEmailOTP checks the code sent to email. A nil error means the user
// authenticated.
func (c *CognitoClient) VerifyEmailOTP(ctx context.Context, session, email, code string) error {
	out, err := c.api.RespondToAuthChallenge(ctx, &cognitoidentityprovider.RespondToAuthChallengeInput{
		ChallengeName: types.ChallengeNameTypeEmailOtp,
		ClientId:      aws.String(c.clientID),
		Session:       aws.String(session),
		ChallengeResponses: map[string]string{
			"USERNAME":       email,
			"EMAIL_OTP_CODE": code,
		},
	})
	if err != nil {
		return mapCognitoError(err)
	}
	if out.AuthenticationResult == nil {
		return ErrCognitoNotAuthorized
	}
	return nil
}

// CreateUser adds email to the pool as verified and suppresses the welcome
// message.
func (c *CognitoClient) CreateUser(ctx context.Context, email string) error {
	_, err := c.api.AdminCreateUser(ctx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId:    aws.String(c.poolID),
		Username:      aws.String(email),
		MessageAction: types.MessageActionTypeSuppress,
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("email_verified"), Value: aws.String("true")},
		},
	})
	return mapCognitoError(err)
}

func mapCognitoError(err error) error {
	if err == nil {
		return nil
	}

	var (
		throttled     *types.TooManyRequestsException
		notAuthorized *types.NotAuthorizedException
		expired       *types.ExpiredCodeException
		mismatch      *types.CodeMismatchException
		userExists    *types.UsernameExistsException
	)
	var sentinel error
	switch {
	case errors.As(err, &throttled):
		sentinel = ErrCognitoThrottled
	case errors.As(err, &notAuthorized):
		sentinel = ErrCognitoNotAuthorized
	case errors.As(err, &expired):
		sentinel = ErrCognitoExpiredCode
	case errors.As(err, &mismatch):
		sentinel = ErrCognitoCodeMismatch
	case errors.As(err, &userExists):
		sentinel = ErrCognitoUserExists
	default:
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func regionFromPoolID(poolID string) (string, error) {
	region, _, ok := strings.Cut(poolID, "_")
	if !ok || region == "" {
		return "", fmt.Errorf("invalid cognito pool id: %q", poolID)
	}
	return region, nil
}
