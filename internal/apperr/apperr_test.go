package apperr

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	err := IO("audio.load", os.ErrNotExist)

	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrDecode)
	assert.NotErrorIs(t, err, ErrModelInference)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"io", IO("op", errors.New("x")), KindIO},
		{"decode", Decode("op", errors.New("x")), KindDecode},
		{"inference", Inferencef("op", "bad shape %d", 3), KindModelInference},
		{"wrapped", fmt.Errorf("outer: %w", Decode("op", nil)), KindDecode},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Inference("sentiment.classify", errors.New("status 503"))
	assert.Equal(t, "sentiment.classify: model_inference_error: status 503", err.Error())

	bare := &Error{Kind: KindDecode, Op: "audio.decode"}
	assert.Equal(t, "audio.decode: decode_error", bare.Error())
}
