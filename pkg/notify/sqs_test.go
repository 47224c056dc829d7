package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSNotifierSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	n := &sqsNotifier{
		id:       "queue-1",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      noopLogger{},
	}

	err := n.Notify(context.Background(), Event{Feed: "us/general", Direction: "refresh", Page: 1})
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["feed"]
	if !ok || attr.StringValue == nil || aws.ToString(attr.StringValue) != "us/general" {
		t.Fatalf("feed attribute missing or wrong: %#v", attr)
	}
	if attr.DataType == nil || aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if client.input.MessageBody == nil || !strings.Contains(aws.ToString(client.input.MessageBody), `"feed":"us/general"`) {
		t.Fatalf("MessageBody missing feed: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSNotifierError(t *testing.T) {
	client := &fakeSQSClient{err: errors.New("boom")}
	n := &sqsNotifier{
		id:       "queue-1",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      noopLogger{},
	}

	if err := n.Notify(context.Background(), Event{Feed: "us/general"}); err == nil {
		t.Fatalf("expected error from Notify")
	}
}
