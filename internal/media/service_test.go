// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhngo/uservault/internal/platform/apperr"
)

// fakePresigner records what it was asked to sign.
type fakePresigner struct {
	lastKey         string
	lastContentType string
	err             error
}

func (p *fakePresigner) PresignPut(_ context.Context, key, contentType string) (string, error) {
	p.lastKey = key
	p.lastContentType = contentType
	if p.err != nil {
		return "", p.err
	}
	return "https://storage.example.com/signed/" + key, nil
}

func TestNewAvatarUpload(t *testing.T) {
	presigner := &fakePresigner{}
	service := NewService(presigner, "https://cdn.example.com/")

	upload, err := service.NewAvatarUpload(context.Background(), "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(upload.Key, "avatars/"))
	assert.True(t, strings.HasSuffix(upload.Key, ".png"))
	assert.Equal(t, "https://storage.example.com/signed/"+upload.Key, upload.UploadURL)
	assert.Equal(t, "https://cdn.example.com/"+upload.Key, upload.PublicURL, "trailing slash on the base must not double up")
	assert.Equal(t, 900, upload.ExpiresIn)
	assert.Equal(t, "image/png", presigner.lastContentType)

	// Every slot gets its own key.
	second, err := service.NewAvatarUpload(context.Background(), "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, upload.Key, second.Key)
}

func TestNewAvatarUpload_ContentTypes(t *testing.T) {
	service := NewService(&fakePresigner{}, "https://cdn.example.com")

	tests := []struct {
		name        string
		contentType string
		wantExt     string
		wantErr     bool
	}{
		{name: "jpeg", contentType: "image/jpeg", wantExt: ".jpg"},
		{name: "webp", contentType: "image/webp", wantExt: ".webp"},
		{name: "gif", contentType: "image/gif", wantExt: ".gif"},
		{name: "uppercase is normalized", contentType: "IMAGE/PNG", wantExt: ".png"},
		{name: "pdf rejected", contentType: "application/pdf", wantErr: true},
		{name: "svg rejected", contentType: "image/svg+xml", wantErr: true},
		{name: "empty rejected", contentType: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upload, err := service.NewAvatarUpload(context.Background(), tt.contentType)

			if tt.wantErr {
				var appError *apperr.AppError
				require.ErrorAs(t, err, &appError)
				assert.Equal(t, "VALIDATION_ERROR", appError.Code)
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(upload.Key, tt.wantExt))
		})
	}
}

func TestNewAvatarUpload_PresignFailure(t *testing.T) {
	service := NewService(&fakePresigner{err: errors.New("s3 down")}, "https://cdn.example.com")

	_, err := service.NewAvatarUpload(context.Background(), "image/png")
	require.Error(t, err)
	assert.False(t, apperr.IsAppError(err), "infrastructure failures surface as internal errors")
}
