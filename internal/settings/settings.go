// Package settings persists user configuration in the settings table:
// vision API credentials and the user health profile sent with every
// analysis request. The API key is encrypted at rest with a machine-bound
// key; everything else is stored in the clear.
package settings

import (
	"github.com/hxlyu/safegain/internal/crypto"
	"github.com/hxlyu/safegain/internal/db"
	apperrors "github.com/hxlyu/safegain/internal/errors"
	"github.com/hxlyu/safegain/internal/ingest"
)

// Setting keys.
const (
	KeyAPIKey      = "safegain_api_key"
	KeyEndpointID  = "safegain_endpoint_id"
	KeyUserProfile = "safegain_user_prompt"
)

// Store reads and writes user settings.
type Store struct {
	repo      *db.Repository
	cryptoKey string
}

// NewStore creates a settings store. machineID binds the API key encryption
// to this device.
func NewStore(repo *db.Repository, machineID string) *Store {
	return &Store{
		repo:      repo,
		cryptoKey: crypto.DeriveKey(machineID),
	}
}

// SaveAPIKey encrypts and stores the vision API key. An empty key clears it.
func (s *Store) SaveAPIKey(apiKey string) error {
	if apiKey == "" {
		return s.repo.SetSetting(KeyAPIKey, "")
	}
	encrypted, err := crypto.EncryptString(apiKey, s.cryptoKey)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCrypto, "failed to encrypt API key", err)
	}
	return s.repo.SetSetting(KeyAPIKey, encrypted)
}

// APIKey returns the decrypted vision API key, or "" when unset.
func (s *Store) APIKey() (string, error) {
	encrypted, ok, err := s.repo.GetSetting(KeyAPIKey)
	if err != nil {
		return "", err
	}
	if !ok || encrypted == "" {
		return "", nil
	}
	apiKey, err := crypto.DecryptString(encrypted, s.cryptoKey)
	if err != nil {
		// A key encrypted on another machine cannot be recovered here.
		return "", apperrors.Wrap(apperrors.ErrCrypto, "failed to decrypt API key", err)
	}
	return apiKey, nil
}

// SaveEndpointID stores the model endpoint id.
func (s *Store) SaveEndpointID(endpointID string) error {
	return s.repo.SetSetting(KeyEndpointID, endpointID)
}

// EndpointID returns the stored model endpoint id, or "" when unset.
func (s *Store) EndpointID() (string, error) {
	value, _, err := s.repo.GetSetting(KeyEndpointID)
	return value, err
}

// SaveUserProfile stores the health profile text included in every
// analysis request.
func (s *Store) SaveUserProfile(profile string) error {
	return s.repo.SetSetting(KeyUserProfile, profile)
}

// UserProfile returns the stored health profile, falling back to the
// built-in default when unset.
func (s *Store) UserProfile() (string, error) {
	value, ok, err := s.repo.GetSetting(KeyUserProfile)
	if err != nil {
		return "", err
	}
	if !ok || value == "" {
		return ingest.DefaultUserProfile, nil
	}
	return value, nil
}

// Load assembles the vision client configuration from stored settings.
// Credentials may still be empty; the client reports not-configured on use.
func (s *Store) Load() (ingest.Config, error) {
	apiKey, err := s.APIKey()
	if err != nil {
		return ingest.Config{}, err
	}
	endpointID, err := s.EndpointID()
	if err != nil {
		return ingest.Config{}, err
	}
	profile, err := s.UserProfile()
	if err != nil {
		return ingest.Config{}, err
	}
	return ingest.Config{
		APIKey:      apiKey,
		EndpointID:  endpointID,
		UserProfile: profile,
	}, nil
}
