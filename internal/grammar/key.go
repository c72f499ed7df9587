package grammar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/taigrr/jotter/internal/storage"
)

// KeyStorageKey is the storage key holding the API key.
const KeyStorageKey = "geminiApiKey"

var (
	// ErrNoKey is returned when no API key is stored or configured.
	ErrNoKey = errors.New("no Gemini API key configured")
	// ErrInvalidKey is returned for keys that fail validation.
	ErrInvalidKey = errors.New("invalid Gemini API key")
)

var keyCharset = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

type keyInput struct {
	Key string `validate:"required,min=20,max=100,startswith=AIza,gemini_charset"`
}

var keyValidator = newKeyValidator()

func newKeyValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("gemini_charset", func(fl validator.FieldLevel) bool {
		return keyCharset.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("grammar: register key validation: %v", err))
	}
	return v
}

// ValidateKey checks the shape of a Gemini API key: prefix "AIza", 20 to 100
// characters, letters, digits, underscore and hyphen only.
func ValidateKey(key string) error {
	if err := keyValidator.Struct(keyInput{Key: key}); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: failed %s check", ErrInvalidKey, verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return nil
}

// Keys persists the API key in a storage area. A key from the environment
// is used when none is stored.
type Keys struct {
	area     *storage.Area
	fallback string
}

// NewKeys creates a Keys store. fallback may be empty.
func NewKeys(area *storage.Area, fallback string) *Keys {
	return &Keys{area: area, fallback: strings.TrimSpace(fallback)}
}

// Load returns the stored key, or the fallback, or ErrNoKey.
func (k *Keys) Load() (string, error) {
	data, ok, err := k.area.Get(KeyStorageKey)
	if err != nil {
		return "", err
	}
	if ok {
		if key := strings.TrimSpace(string(data)); key != "" {
			return key, nil
		}
	}
	if k.fallback != "" {
		return k.fallback, nil
	}
	return "", ErrNoKey
}

// Save validates and stores key.
func (k *Keys) Save(key string) error {
	key = strings.TrimSpace(key)
	if err := ValidateKey(key); err != nil {
		return err
	}
	return k.area.Set(KeyStorageKey, []byte(key))
}

// Clear removes the stored key.
func (k *Keys) Clear() error {
	return k.area.Remove(KeyStorageKey)
}

// Mask hides all but the first four and last four characters of key.
func Mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
