package config

import (
	"fmt"

	supa "github.com/supabase-community/supabase-go"
)

// NewSupabaseClient initializes the Supabase client from configuration.
// The service key is required; there is no anonymous-key fallback.
func NewSupabaseClient(cfg SupabaseConfig) (*supa.Client, error) {
	client, err := supa.NewClient(cfg.URL, cfg.ServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing supabase client: %w", err)
	}
	return client, nil
}
