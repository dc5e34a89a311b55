package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESClientSendFrom(t *testing.T) {
	api := &fakeSES{}
	client := &SESClient{api: api, sender: "noreply@courtside.app"}
	ctx := context.Background()

	if err := client.Send(ctx, " player@test.com ", "Booked", "See you on court 1"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := client.SendFrom(ctx, "player@test.com", "Booked", "body", "desk@riverside.test"); err != nil {
		t.Fatalf("send from: %v", err)
	}
	if len(api.inputs) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(api.inputs))
	}

	first := api.inputs[0]
	if aws.ToString(first.FromEmailAddress) != "noreply@courtside.app" {
		t.Fatalf("expected default sender, got %q", aws.ToString(first.FromEmailAddress))
	}
	if got := first.Destination.ToAddresses; len(got) != 1 || got[0] != "player@test.com" {
		t.Fatalf("unexpected recipients %v", got)
	}
	if aws.ToString(first.Content.Simple.Body.Text.Data) != "See you on court 1" {
		t.Fatalf("unexpected body %q", aws.ToString(first.Content.Simple.Body.Text.Data))
	}
	if aws.ToString(api.inputs[1].FromEmailAddress) != "desk@riverside.test" {
		t.Fatalf("expected club sender, got %q", aws.ToString(api.inputs[1].FromEmailAddress))
	}
}

func TestSESClientErrors(t *testing.T) {
	api := &fakeSES{err: errors.New("throttled")}
	client := &SESClient{api: api, sender: "noreply@courtside.app"}

	if err := client.Send(context.Background(), "  ", "s", "b"); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
	if len(api.inputs) != 0 {
		t.Fatalf("expected no SES call without a recipient")
	}
	if err := client.Send(context.Background(), "player@test.com", "s", "b"); err == nil {
		t.Fatalf("expected SES failure to be returned")
	}

	var nilClient *SESClient
	if err := nilClient.Send(context.Background(), "player@test.com", "s", "b"); err == nil {
		t.Fatalf("expected error from nil client")
	}
}

func TestNewSESClientValidation(t *testing.T) {
	if _, err := NewSESClient("", "", "", "noreply@courtside.app"); err == nil {
		t.Fatalf("expected missing region to fail")
	}
	if _, err := NewSESClient("", "", "us-east-1", "not an address"); err == nil {
		t.Fatalf("expected invalid sender to fail")
	}
	if _, err := NewSESClient("AKIA", "", "us-east-1", "noreply@courtside.app"); err == nil {
		t.Fatalf("expected half-set credentials to fail")
	}
}
