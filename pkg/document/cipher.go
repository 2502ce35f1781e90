package document

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/ppp/pkg/secrets"
)

// Engine is the per-value primitive used by Cipher. *secrets.Engine satisfies it.
type Engine interface {
	GenerateIV() ([]byte, error)
	Encrypt(iv []byte, plaintext string) (string, error)
	Decrypt(iv []byte, ciphertext string) (string, error)
}

// Cipher encrypts and decrypts the secret-like fields of documents.
// It holds no document state and is safe for concurrent use.
type Cipher struct {
	engine Engine
	logger *slog.Logger
}

// CipherOption configures a Cipher.
type CipherOption func(*Cipher)

// WithLogger sets the logger used to report tolerated decryption failures.
// Values are never logged.
func WithLogger(l *slog.Logger) CipherOption {
	return func(c *Cipher) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCipher creates a document cipher on top of engine.
func NewCipher(engine Engine, opts ...CipherOption) *Cipher {
	c := &Cipher{
		engine: engine,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encrypt returns a copy of doc with every top-level secret-like string field
// encrypted under one freshly generated IV, stored in the iv field.
// Documents without secret-like fields are returned as plain copies.
func (c *Cipher) Encrypt(doc Document) (Document, error) {
	clone := doc.Clone()
	if clone == nil {
		return Document{}, nil
	}

	var iv []byte
	for _, field := range clone.Keys() {
		if !clone.isProtected(field) {
			continue
		}
		plain, ok := clone[field].(string)
		if !ok {
			continue
		}

		if iv == nil {
			var err error
			if iv, err = c.engine.GenerateIV(); err != nil {
				return nil, err
			}
		}

		ct, err := c.engine.Encrypt(iv, plain)
		if err != nil {
			return nil, fmt.Errorf("document: encrypt field %q: %w", field, err)
		}
		clone[field] = ct
	}

	if iv != nil {
		clone[FieldIV] = secrets.EncodeIV(iv)
	}

	return clone, nil
}

// Decrypt returns a copy of doc with secret-like fields decrypted using the
// document's iv, and nested Document values that carry their own iv decrypted
// with that IV. A failure on the public key of a pub/sub document keeps the
// stored value; any other failure aborts the call.
func (c *Cipher) Decrypt(doc Document) (Document, error) {
	clone := doc.Clone()
	if clone == nil {
		return Document{}, nil
	}
	if err := c.decryptInPlace(clone); err != nil {
		return nil, err
	}
	return clone, nil
}

// decryptInPlace works on a document already owned by the caller.
func (c *Cipher) decryptInPlace(d Document) error {
	var (
		iv    []byte
		ivErr error
		ready bool
	)
	loadIV := func() ([]byte, error) {
		if !ready {
			ready = true
			if s := d.IV(); s == "" {
				ivErr = errors.Join(secrets.ErrDecryptionFailed, ErrMissingIV)
			} else {
				iv, ivErr = secrets.DecodeIV(s)
				if ivErr != nil {
					ivErr = errors.Join(secrets.ErrDecryptionFailed, ivErr)
				}
			}
		}
		return iv, ivErr
	}

	for _, field := range d.Keys() {
		value := d[field]

		// A nested Document is opened with its own iv whatever the field is
		// called.
		if sub, ok := value.(Document); ok {
			if sub.IV() != "" {
				if err := c.decryptInPlace(sub); err != nil {
					return fmt.Errorf("document: nested %q: %w", field, err)
				}
			}
			continue
		}

		if IsSecretField(field) {
			ct, ok := value.(string)
			if !ok {
				continue
			}

			exempt := d.isExempt(field)
			if exempt && d.IV() == "" {
				continue
			}

			key, err := loadIV()
			if err == nil {
				var plain string
				if plain, err = c.engine.Decrypt(key, ct); err == nil {
					d[field] = plain
					continue
				}
			}

			if exempt {
				c.logger.Debug("kept pub/sub key as stored",
					slog.String("document_id", d.ID()),
					slog.String("field", field),
				)
				continue
			}
			return fmt.Errorf("document: decrypt field %q: %w", field, err)
		}
	}

	return nil
}

// DecryptMany decrypts docs element-wise preserving order.
// It stops at the first failure.
func (c *Cipher) DecryptMany(docs []Document) ([]Document, error) {
	if docs == nil {
		return nil, nil
	}
	out := make([]Document, 0, len(docs))
	for i, d := range docs {
		dec, err := c.Decrypt(d)
		if err != nil {
			return nil, fmt.Errorf("document: element %d: %w", i, err)
		}
		out = append(out, dec)
	}
	return out, nil
}

// DecryptSeq lazily decrypts a sequence of documents. Each element is
// decrypted when pulled; iteration ends after the first error is yielded.
func (c *Cipher) DecryptSeq(docs iter.Seq[Document]) iter.Seq2[Document, error] {
	return func(yield func(Document, error) bool) {
		for d := range docs {
			dec, err := c.Decrypt(d)
			if !yield(dec, err) || err != nil {
				return
			}
		}
	}
}

// Transformation returns a post-read hook for the document store. Slices of
// documents are decrypted element-wise; any other value passes through
// unchanged.
func (c *Cipher) Transformation() func(ctx context.Context, v any) (any, error) {
	return func(ctx context.Context, v any) (any, error) {
		switch docs := v.(type) {
		case []Document:
			return c.decryptSlice(ctx, docs)
		case []map[string]any:
			conv := make([]Document, len(docs))
			for i, m := range docs {
				conv[i] = Document(m)
			}
			return c.decryptSlice(ctx, conv)
		default:
			return v, nil
		}
	}
}

func (c *Cipher) decryptSlice(ctx context.Context, docs []Document) ([]Document, error) {
	out := make([]Document, 0, len(docs))
	for dec, err := range c.DecryptSeq(slices.Values(docs)) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, dec)
	}
	return out, nil
}
