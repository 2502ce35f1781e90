// Package document provides the semi-structured Document type exchanged with
// the document store and a Cipher that protects its secret-like fields at rest.
//
// A field is secret-like when its name ends with token, key, secret or
// password (case-insensitive). The one exception is the key field of a
// publish/subscribe connection document (type PubSubType): it is a public
// client identifier and is never encrypted.
//
// Encrypt generates one IV per call, lazily on the first secret-like field,
// shares it between all secret-like siblings and records it in the iv field.
// Only top-level fields are encrypted. Decrypt also descends into nested
// values of type Document that carry their own iv and decrypts them with that
// IV. Both operations work on deep copies; the input is never modified.
//
//	cipher := document.NewCipher(engine)
//	enc, err := cipher.Encrypt(document.Document{
//	    "_id":      "a",
//	    "type":     "alor-openapi-v2",
//	    "apiToken": "PLAINTEXT",
//	})
//	dec, err := cipher.Decrypt(enc) // dec["apiToken"] == "PLAINTEXT"
//
// DecryptMany, DecryptSeq and Transformation adapt Decrypt to collections, the
// last one in the shape expected by the store's post-read hook.
package document
