package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-electorate/internal/domain"
)

// Loader parses, validates and compiles election configuration documents
// into immutable Ballots.
// Use Loader to load elections from files or readers while benefiting from
// SHA256-based caching of compiled ballots.
type Loader struct {
	// validator performs struct tag validation on parsed documents.
	validator *validator.Validate
	// cache stores compiled ballots indexed by SHA256 hash of the
	// normalized configuration. Cached ballots are immutable and shared.
	cache   map[string]*domain.Ballot
	cacheMu sync.RWMutex
	// sf prevents duplicate compilation when multiple goroutines request
	// the same configuration simultaneously.
	sf singleflight.Group
}

// NewLoader creates a Loader with an empty cache.
// NewLoader returns an error if validator registration fails.
func NewLoader() (*Loader, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report field paths with their document names, e.g.
	// "populations[0].issue_views[1].weight_variance".
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := registerCustomValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &Loader{
		validator: v,
		cache:     make(map[string]*domain.Ballot),
	}, nil
}

// load is the common implementation for loading ballots from byte data.
// Every failure that stems from the document itself is a
// *domain.ConfigError.
func (l *Loader) load(ctx context.Context, data []byte) (*domain.Ballot, error) {
	config, err := l.parseDocument(data)
	if err != nil {
		return nil, err
	}

	// Hash the normalized config, not the raw bytes, so formatting and
	// encoding differences share a cache entry.
	hash, err := l.calculateConfigHash(config)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, _ := l.sf.Do(hash, func() (any, error) {
		if ballot, ok := l.getCachedBallot(hash); ok {
			return ballot, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ballot, err := l.Compile(config)
		if err != nil {
			return nil, err
		}

		l.cacheBallot(hash, ballot)
		return ballot, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Ballot), nil
}

// LoadFromFile loads and compiles an election from a JSON or YAML file.
// The returned Ballot may be shared with other callers and must not be
// modified.
func (l *Loader) LoadFromFile(ctx context.Context, path string) (*domain.Ballot, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return l.load(ctx, data)
}

// LoadFromReader loads and compiles an election from an io.Reader.
// It reads all data into memory and behaves like LoadFromFile.
func (l *Loader) LoadFromReader(ctx context.Context, r io.Reader) (*domain.Ballot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return l.load(ctx, data)
}

// Compile validates an already parsed configuration and builds a Ballot
// from it. Compile bypasses the cache.
func (l *Loader) Compile(config *ElectionConfig) (*domain.Ballot, error) {
	if err := l.validateConfig(config); err != nil {
		return nil, err
	}
	return compileBallot(config)
}

// parseDocument decodes JSON when the document starts with an object and
// YAML otherwise. Both decoders reject unknown fields so that typos in
// configuration are never silently ignored.
func (l *Loader) parseDocument(data []byte) (*ElectionConfig, error) {
	var config ElectionConfig

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, domain.NewConfigError("document", fmt.Errorf("empty document: %w", domain.ErrMissingField))
	}

	if trimmed[0] == '{' {
		decoder := json.NewDecoder(bytes.NewReader(trimmed))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&config); err != nil {
			return nil, domain.NewConfigError("document", fmt.Errorf("JSON decode failed: %w", err))
		}
		var trailing json.RawMessage
		if err := checkSingleDocument(decoder.Decode(&trailing)); err != nil {
			return nil, domain.NewConfigError("document", fmt.Errorf("JSON decode failed: %w", err))
		}
		return &config, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(trimmed))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return nil, domain.NewConfigError("document", fmt.Errorf("YAML decode failed: %w", err))
	}
	var trailing yaml.Node
	if err := checkSingleDocument(decoder.Decode(&trailing)); err != nil {
		return nil, domain.NewConfigError("document", fmt.Errorf("YAML decode failed: %w", err))
	}
	return &config, nil
}

// checkSingleDocument interprets the result of decoding past the first
// value. Only io.EOF means the document held exactly one value.
func checkSingleDocument(err error) error {
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		return errors.New("unexpected data after the first document")
	default:
		return fmt.Errorf("trailing data: %w", err)
	}
}

// validateConfig runs struct tag validation and translates every failure
// into a ConfigError naming the offending field.
func (l *Loader) validateConfig(config *ElectionConfig) error {
	err := l.validator.Struct(config)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, domain.NewConfigError(fieldPath(fe), fieldErrorCause(fe)))
	}
	return errors.Join(errs...)
}

// calculateConfigHash normalizes the config by re-encoding it as YAML with
// consistent formatting and returns the SHA256 of the result.
func (l *Loader) calculateConfigHash(config *ElectionConfig) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (l *Loader) getCachedBallot(hash string) (*domain.Ballot, bool) {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()

	ballot, ok := l.cache[hash]
	return ballot, ok
}

func (l *Loader) cacheBallot(hash string, ballot *domain.Ballot) {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	l.cache[hash] = ballot
}

// ClearCache removes all cached ballots, forcing subsequent loads to
// recompile from source.
func (l *Loader) ClearCache() {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	l.cache = make(map[string]*domain.Ballot)
}

// CacheSize returns the number of cached ballots.
func (l *Loader) CacheSize() int {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()

	return len(l.cache)
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// fieldErrorCause maps a failed validation tag to the domain sentinel it
// represents.
func fieldErrorCause(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return domain.ErrMissingField
	case "unique":
		return domain.ErrDuplicateName
	case "finite":
		return domain.ErrInvalidNumber
	case "min":
		switch fe.Kind() {
		case reflect.Slice, reflect.Map, reflect.String:
			return fmt.Errorf("at least %s entries required: %w", fe.Param(), domain.ErrMissingField)
		default:
			return fmt.Errorf("%v is below %s: %w", fe.Value(), fe.Param(), domain.ErrNegativeValue)
		}
	default:
		return fmt.Errorf("failed %q validation", fe.Tag())
	}
}
