package message

import (
	"encoding/base64"
	"encoding/json"
	"unicode/utf8"

	"github.com/chainnote/e2e/errs"
)

// ReplyRef is the optional reply-context carried inside a structured payload.
type ReplyRef struct {
	TxID    string
	Preview string
}

// PreviewMaxLen is the maximum length of a reply preview; longer previews
// are truncated to PreviewMaxLen total characters with a trailing "...".
const PreviewMaxLen = 80

const previewSuffix = "..."

// TruncatePreview truncates s to PreviewMaxLen runes, replacing the last
// three characters with "..." when truncation occurs, per spec.md §3.
func TruncatePreview(s string) string {
	runes := []rune(s)
	if len(runes) <= PreviewMaxLen {
		return s
	}
	keep := PreviewMaxLen - len(previewSuffix)
	return string(runes[:keep]) + previewSuffix
}

// keyPublishType is the reserved payload type that signals "no user message".
const keyPublishType = "key-publish"

// EncodePlaintext is the exported form of encodePlaintext, reused by
// pskmessage so both encryptors share one wire-payload encoding.
func EncodePlaintext(text string, reply *ReplyRef) ([]byte, error) {
	return encodePlaintext(text, reply)
}

// EncodeKeyPublish is the exported form of encodeKeyPublish.
func EncodeKeyPublish() []byte {
	return encodeKeyPublish()
}

// EncodeKeyPublishSigned builds a key-publish payload carrying a
// signature (spec.md §4.G: the account's signing key over its own
// key-agreement public key). signature is base64-encoded into the JSON
// body alongside the reserved type marker.
func EncodeKeyPublishSigned(signature []byte) []byte {
	obj := map[string]interface{}{
		"type": keyPublishType,
		"sig":  base64.StdEncoding.EncodeToString(signature),
	}
	b, _ := json.Marshal(obj)
	return b
}

// DecodePlaintext is the exported form of decodePlaintext.
func DecodePlaintext(plaintext []byte) (*Decoded, error) {
	return decodePlaintext(plaintext)
}

// TryDecodeKeyPublish recognizes a key-publish payload without requiring
// it to have been AEAD-opened first: a key-publish envelope (spec.md §6)
// carries its JSON marker as the envelope's plaintext Payload directly, so
// that any third party scanning the chain can read the announced key and
// verify its signature without sharing a secret with the announcer. ok is
// false for anything that isn't a key-publish marker (ordinary ciphertext
// payloads will essentially never collide with this shape).
func TryDecodeKeyPublish(payload []byte) (*Decoded, bool) {
	if len(payload) == 0 || payload[0] != '{' {
		return nil, false
	}
	var marker struct {
		Type string `json:"type"`
		Sig  string `json:"sig"`
	}
	if err := json.Unmarshal(payload, &marker); err != nil || marker.Type != keyPublishType {
		return nil, false
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, false
	}
	switch {
	case len(fields) == 1:
		return &Decoded{Filtered: true}, true
	case len(fields) == 2 && marker.Sig != "":
		sig, err := base64.StdEncoding.DecodeString(marker.Sig)
		if err != nil {
			return nil, false
		}
		return &Decoded{Filtered: true, KeyPublishSignature: sig}, true
	}
	return nil, false
}

// encodePlaintext builds the bytes that get AEAD-sealed as the message
// payload: raw UTF-8 if there is no reply context, otherwise a JSON object
// with sorted keys (spec.md §3). Using a map rather than a struct for the
// JSON form is deliberate: encoding/json sorts map keys lexicographically,
// which is the simplest way to guarantee the "sorted keys" wire
// requirement without hand-rolling a canonical encoder.
func encodePlaintext(text string, reply *ReplyRef) ([]byte, error) {
	if reply == nil {
		return []byte(text), nil
	}

	obj := map[string]interface{}{
		"text": text,
		"replyTo": map[string]interface{}{
			"txid":    reply.TxID,
			"preview": TruncatePreview(reply.Preview),
		},
	}
	return json.Marshal(obj)
}

func encodeKeyPublish() []byte {
	b, _ := json.Marshal(map[string]string{"type": keyPublishType})
	return b
}

// Decoded is the result of inspecting a decrypted plaintext.
type Decoded struct {
	Filtered            bool
	Text                string
	ReplyToID           string
	ReplyToPreview      string
	KeyPublishSignature []byte // non-nil only for a signed key-publish payload
}

// decodePlaintext implements the inspection order of spec.md §4.D step 5:
// key-publish marker, then structured JSON payload, then raw UTF-8.
func decodePlaintext(plaintext []byte) (*Decoded, error) {
	if d, ok := TryDecodeKeyPublish(plaintext); ok {
		return d, nil
	}

	if len(plaintext) > 0 && plaintext[0] == '{' {
		var structured struct {
			Text    string `json:"text"`
			ReplyTo *struct {
				TxID    string `json:"txid"`
				Preview string `json:"preview"`
			} `json:"replyTo"`
		}
		if err := json.Unmarshal(plaintext, &structured); err == nil && structured.ReplyTo != nil {
			d := &Decoded{
				Text:           structured.Text,
				ReplyToID:      structured.ReplyTo.TxID,
				ReplyToPreview: structured.ReplyTo.Preview,
			}
			return d, nil
		}
	}

	if !utf8.Valid(plaintext) {
		return nil, errs.Wrap(errs.ErrDecryptionFailed, "plaintext is not valid UTF-8")
	}
	return &Decoded{Text: string(plaintext)}, nil
}
