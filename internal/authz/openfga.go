package authz

import (
	"context"
	"fmt"
	"os"
	"strconv"

	fga "github.com/openfga/go-sdk/client"
	"github.com/openfga/go-sdk/credentials"
)

// Config carries the connection settings for the OpenFGA-backed checker.
// Zero-valued fields are resolved from the environment at construction time,
// falling back to the documented defaults. Explicit values always win.
type Config struct {
	APIURL  string // FGA_API_URL, default https://api.us1.fga.dev
	StoreID string // FGA_STORE_ID, required
	ModelID string // FGA_MODEL_ID, optional but recommended in prod

	// Client-credentials flow. When ClientID is empty no credentials are
	// attached (local/unauthenticated servers).
	TokenIssuer  string // FGA_API_TOKEN_ISSUER, default auth.fga.dev
	APIAudience  string // FGA_API_AUDIENCE, default https://api.us1.fga.dev/
	ClientID     string // FGA_CLIENT_ID
	ClientSecret string // FGA_CLIENT_SECRET
}

func (c Config) resolved() Config {
	if c.APIURL == "" {
		c.APIURL = getenv("FGA_API_URL", "https://api.us1.fga.dev")
	}
	if c.StoreID == "" {
		c.StoreID = os.Getenv("FGA_STORE_ID")
	}
	if c.ModelID == "" {
		c.ModelID = os.Getenv("FGA_MODEL_ID")
	}
	if c.TokenIssuer == "" {
		c.TokenIssuer = getenv("FGA_API_TOKEN_ISSUER", "auth.fga.dev")
	}
	if c.APIAudience == "" {
		c.APIAudience = getenv("FGA_API_AUDIENCE", "https://api.us1.fga.dev/")
	}
	if c.ClientID == "" {
		c.ClientID = os.Getenv("FGA_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		c.ClientSecret = os.Getenv("FGA_CLIENT_SECRET")
	}
	return c
}

func (c Config) validate() error {
	if c.StoreID == "" {
		return fmt.Errorf("openfga_config: store id missing (set FGA_STORE_ID)")
	}
	if c.ClientID != "" && c.ClientSecret == "" {
		return fmt.Errorf("openfga_config: client id set but secret missing (set FGA_CLIENT_SECRET)")
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// OpenFGA resolves batch checks against an OpenFGA server.
type OpenFGA struct {
	c   *fga.OpenFgaClient
	cfg Config
}

var _ BatchChecker = (*OpenFGA)(nil)

func NewOpenFGA(cfg Config) (*OpenFGA, error) {
	cfg = cfg.resolved()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	conf := &fga.ClientConfiguration{
		ApiUrl:  cfg.APIURL,
		StoreId: cfg.StoreID,
	}
	if cfg.ModelID != "" {
		conf.AuthorizationModelId = cfg.ModelID
	}
	if cfg.ClientID != "" {
		conf.Credentials = &credentials.Credentials{
			Method: credentials.CredentialsMethodClientCredentials,
			Config: &credentials.Config{
				ClientCredentialsApiTokenIssuer: cfg.TokenIssuer,
				ClientCredentialsApiAudience:    cfg.APIAudience,
				ClientCredentialsClientId:       cfg.ClientID,
				ClientCredentialsClientSecret:   cfg.ClientSecret,
			},
		}
	}

	client, err := fga.NewSdkClient(conf)
	if err != nil {
		return nil, fmt.Errorf("openfga_client_init: %w", err)
	}
	return &OpenFGA{c: client, cfg: cfg}, nil
}

// BatchCheck issues one batch request for all checks. The SDK joins responses
// by correlation id; we assign positional ids and translate back to the
// object key. Any per-item error from the service fails the whole call.
func (o *OpenFGA) BatchCheck(ctx context.Context, checks []Check) ([]Result, error) {
	items := make([]fga.ClientBatchCheckItem, len(checks))
	objByCorrelation := make(map[string]string, len(checks))
	for i, chk := range checks {
		id := strconv.Itoa(i)
		items[i] = fga.ClientBatchCheckItem{
			User:          chk.Subject,
			Relation:      chk.Relation,
			Object:        chk.Object,
			CorrelationId: id,
		}
		objByCorrelation[id] = chk.Object
	}

	resp, err := o.c.BatchCheck(ctx).Body(fga.ClientBatchCheckRequest{Checks: items}).Execute()
	if err != nil {
		return nil, fmt.Errorf("fga_batch_check: %w", err)
	}

	results := make([]Result, 0, len(resp.GetResult()))
	for corrID, r := range resp.GetResult() {
		obj, ok := objByCorrelation[corrID]
		if !ok {
			return nil, fmt.Errorf("fga_batch_check: unknown correlation id %q in response", corrID)
		}
		if r.Error != nil {
			return nil, fmt.Errorf("fga_batch_check: item %s: %s", corrID, r.Error.GetMessage())
		}
		results = append(results, Result{Object: obj, Allowed: r.GetAllowed()})
	}
	return results, nil
}
