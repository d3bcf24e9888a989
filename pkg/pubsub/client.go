package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/invoicecapture-backend/pkg/config"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopic           = errors.New("pubsub invoice topic is required")
)

// Client owns the Pub/Sub connection and the invoice event publisher.
// Close flushes buffered messages before releasing the connection.
type Client struct {
	client *pubsub.Client
	topic  string

	once      sync.Once
	publisher *pubsub.Publisher
}

// NewClient connects to Pub/Sub and fails fast when the invoice topic is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}
	topic := TopicName(project, cfg.InvoiceTopic)
	if topic == "" {
		return nil, errNoTopic
	}

	var opts []option.ClientOption
	if creds := strings.TrimSpace(gcp.CredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	psClient, err := pubsub.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	_, err = psClient.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: topic})
	if err != nil {
		_ = psClient.Close()
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("topic %q does not exist", topic)
		}
		return nil, fmt.Errorf("checking topic %q: %w", topic, err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "topic", topic), "pubsub client initialized")
	}
	return &Client{client: psClient, topic: topic}, nil
}

// InvoicePublisher returns the shared publisher for invoice lifecycle events.
func (c *Client) InvoicePublisher() *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	c.once.Do(func() {
		c.publisher = c.client.Publisher(c.topic)
	})
	return c.publisher
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.publisher != nil {
		c.publisher.Stop()
	}
	return c.client.Close()
}

// TopicName expands a short topic id into its full resource name.
// Names already in "projects/<p>/topics/<t>" form are returned unchanged.
func TopicName(project, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "projects/") && strings.Contains(name, "/topics/") {
		return name
	}
	project = strings.TrimSpace(project)
	if project == "" {
		return ""
	}
	return "projects/" + project + "/topics/" + name
}
