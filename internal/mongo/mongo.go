package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Client struct {
	*mongo.Client
	db *mongo.Database
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, uri, database string) (*Client, error) {

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, err
	}

	return &Client{
		Client: client,
		db:     client.Database(database),
	}, nil
}

func (c *Client) Database() *mongo.Database {
	return c.db
}

func (c *Client) Close(ctx context.Context) error {
	return c.Disconnect(ctx)
}
