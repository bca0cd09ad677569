package store

import (
	"fmt"

	supa "github.com/supabase-community/supabase-go"
)

// Client wraps the shared Supabase connection used by all entity stores.
type Client struct {
	supa *supa.Client
}

// NewClient creates a Supabase client for the project.
func NewClient(supabaseURL, serviceKey string) (*Client, error) {
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &Client{supa: client}, nil
}
