package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// Credentials is a temporary S3 access grant brokered from a DAAC's
// s3credentials endpoint.
type Credentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken"`
	Expiration      string `json:"expiration"`
}

// ssmParameterNames are the fixed parameter-store keys the original
// pipeline writes brokered credentials under (original_source/datagen/S3List.py:get_s3_creds).
const (
	ssmParamKey        = "s3_creds_key"
	ssmParamSecret     = "s3_creds_secret"
	ssmParamToken      = "s3_creds_token"
	ssmParamExpiration = "s3_creds_expiration"
	ssmParamEDLToken   = "bearer--edl--token"
)

// Broker fetches temporary S3 credentials from a DAAC's EDL-protected
// endpoint and persists them to AWS Systems Manager Parameter Store,
// grounded on original_source/datagen/S3List.py's get_creds/get_s3_creds.
type Broker struct {
	httpClient *http.Client
	ssmClient  *ssm.Client
}

// NewBroker constructs a Broker using a default AWS SDK configuration
// (region resolution via the usual SDK chain — environment, shared config,
// or instance profile).
func NewBroker(ctx context.Context) (*Broker, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Join(ErrCredential, err)
	}
	return &Broker{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// The EDL login dance relies on following redirects manually
			// to capture the Location header and cookie at each hop, as
			// the original implementation does with allow_redirects=False.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		ssmClient: ssm.NewFromConfig(cfg),
	}, nil
}

// FetchS3Credentials runs the three-hop EDL login redirect dance against
// the provider's s3credentials endpoint and decodes the resulting
// temporary credentials.
func (b *Broker) FetchS3Credentials(ctx context.Context, provider Provider, edlUsername, edlPassword string) (*Credentials, error) {
	endpoint, err := provider.Endpoint()
	if err != nil {
		return nil, err
	}

	login, err := b.get(ctx, endpoint, nil)
	if err != nil {
		return nil, errors.Join(ErrCredential, err)
	}
	location := login.Header.Get("Location")
	if location == "" {
		return nil, errors.Join(ErrCredential, errors.New("credential endpoint did not redirect to an auth challenge"))
	}

	auth := base64.StdEncoding.EncodeToString([]byte(edlUsername + ":" + edlPassword))
	authRedirect, err := b.postForm(ctx, location, endpoint, auth)
	if err != nil {
		return nil, errors.Join(ErrCredential, err)
	}
	finalLocation := authRedirect.Header.Get("Location")
	if finalLocation == "" {
		return nil, errors.Join(ErrCredential, errors.New("auth redirect did not resolve to a final location"))
	}

	final, err := b.get(ctx, finalLocation, nil)
	if err != nil {
		return nil, errors.Join(ErrCredential, err)
	}

	var accessToken string
	for _, c := range final.Cookies() {
		if c.Name == "accessToken" {
			accessToken = c.Value
		}
	}

	resp, err := b.get(ctx, endpoint, []*http.Cookie{{Name: "accessToken", Value: accessToken}})
	if err != nil {
		return nil, errors.Join(ErrCredential, err)
	}
	defer resp.Body.Close()

	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return nil, errors.Join(ErrCredential, err)
	}

	return &creds, nil
}

func (b *Broker) get(ctx context.Context, url string, cookies []*http.Cookie) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return b.httpClient.Do(req)
}

func (b *Broker) postForm(ctx context.Context, url, origin, encodedAuth string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Origin", origin)
	req.Header.Set("Authorization", "Basic "+encodedAuth)
	return b.httpClient.Do(req)
}

// PersistToSSM writes a brokered credential set to Parameter Store under
// the fixed names the rest of the pipeline expects, encrypted under kmsKeyID.
func (b *Broker) PersistToSSM(ctx context.Context, creds *Credentials, kmsKeyID string) error {
	params := map[string]string{
		ssmParamKey:        creds.AccessKeyID,
		ssmParamSecret:     creds.SecretAccessKey,
		ssmParamToken:      creds.SessionToken,
		ssmParamExpiration: creds.Expiration,
	}

	for name, value := range params {
		_, err := b.ssmClient.PutParameter(ctx, &ssm.PutParameterInput{
			Name:      &name,
			Value:     &value,
			Type:      ssmtypes.ParameterTypeSecureString,
			KeyId:     &kmsKeyID,
			Overwrite: boolPtr(true),
		})
		if err != nil {
			return errors.Join(ErrCredential, fmt.Errorf("persisting %s: %w", name, err))
		}
	}

	return nil
}

// getParam fetches and decrypts a single SecureString parameter.
func (b *Broker) getParam(ctx context.Context, name string) (string, error) {
	out, err := b.ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           strPtr(name),
		WithDecryption: boolPtr(true),
	})
	if err != nil {
		return "", errors.Join(ErrCredential, err)
	}
	return *out.Parameter.Value, nil
}

// EDLToken retrieves the CMR bearer token from Parameter Store.
func (b *Broker) EDLToken(ctx context.Context) (string, error) {
	return b.getParam(ctx, ssmParamEDLToken)
}

// ssmParamEDLUsername and ssmParamEDLPassword are the fixed parameter-store
// keys holding the Earthdata Login credentials used to authenticate
// against a provider's s3credentials endpoint
// (original_source/datagen/S3List.py:login uses the same two names).
const (
	ssmParamEDLUsername = "edl_username"
	ssmParamEDLPassword = "edl_password"
)

// EDLCredentials retrieves the Earthdata Login username/password pair
// from Parameter Store.
func (b *Broker) EDLCredentials(ctx context.Context) (username, password string, err error) {
	username, err = b.getParam(ctx, ssmParamEDLUsername)
	if err != nil {
		return "", "", err
	}
	password, err = b.getParam(ctx, ssmParamEDLPassword)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

// PersistedCredentials retrieves the S3 credentials most recently brokered
// and persisted to Parameter Store by PersistToSSM, without running the
// EDL login dance again. This is what the simulated-data path
// (-o/--simulated) authenticates with, grounded on
// original_source/datagen/S3List.py:get_s3_uris_sim, which reads the same
// three parameters rather than brokering a fresh credential set.
func (b *Broker) PersistedCredentials(ctx context.Context) (*Credentials, error) {
	key, err := b.getParam(ctx, ssmParamKey)
	if err != nil {
		return nil, err
	}
	secret, err := b.getParam(ctx, ssmParamSecret)
	if err != nil {
		return nil, err
	}
	token, err := b.getParam(ctx, ssmParamToken)
	if err != nil {
		return nil, err
	}
	return &Credentials{AccessKeyID: key, SecretAccessKey: secret, SessionToken: token}, nil
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
