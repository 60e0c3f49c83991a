// Package albums is the typed album surface over the client runtime: the
// CRUD and media-upload operations the UI layers consume.
package albums

import (
	"context"
	"fmt"

	"github.com/Laisky/errors/v2"
	"github.com/go-playground/validator/v10"

	"github.com/qrshare/qrshare-go/client"
)

// Album is a shareable QR-linked media album.
type Album struct {
	Id          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	// QrSlug is the short identifier encoded into the album's QR code.
	QrSlug     string `json:"qrSlug"`
	CoverUrl   string `json:"coverUrl"`
	MediaCount int    `json:"mediaCount"`
	CreatedAt  string `json:"createdAt"`
}

// Media is one uploaded item inside an album.
type Media struct {
	Id          int    `json:"id"`
	AlbumId     int    `json:"albumId"`
	Filename    string `json:"filename"`
	Url         string `json:"url"`
	SizeBytes   int64  `json:"sizeBytes"`
	ContentType string `json:"contentType"`
}

// CreateAlbumRequest is the payload for creating an album.
type CreateAlbumRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Visibility  string `json:"visibility" validate:"omitempty,oneof=public unlisted private"`
}

// UpdateAlbumRequest is the partial-update payload; nil fields are left
// untouched by the backend.
type UpdateAlbumRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Visibility  *string `json:"visibility,omitempty" validate:"omitempty,oneof=public unlisted private"`
}

// Service wraps the album endpoints.
type Service struct {
	api      *client.Client
	validate *validator.Validate
}

func NewService(api *client.Client) *Service {
	return &Service{api: api, validate: validator.New()}
}

// List returns the caller's albums.
func (s *Service) List(ctx context.Context) ([]Album, error) {
	env, err := s.api.Get(ctx, "/albums")
	if err != nil {
		return nil, err
	}
	return client.DataAs[[]Album](env)
}

// Get returns one album by id.
func (s *Service) Get(ctx context.Context, id int) (Album, error) {
	env, err := s.api.Get(ctx, fmt.Sprintf("/albums/%d", id))
	if err != nil {
		return Album{}, err
	}
	return client.DataAs[Album](env)
}

// Create validates and creates an album.
func (s *Service) Create(ctx context.Context, req CreateAlbumRequest) (Album, error) {
	if err := s.validate.Struct(req); err != nil {
		return Album{}, errors.Wrap(err, "validate create album request")
	}
	env, err := s.api.Post(ctx, "/albums", req)
	if err != nil {
		return Album{}, err
	}
	return client.DataAs[Album](env)
}

// Update validates and applies a partial update.
func (s *Service) Update(ctx context.Context, id int, req UpdateAlbumRequest) (Album, error) {
	if err := s.validate.Struct(req); err != nil {
		return Album{}, errors.Wrap(err, "validate update album request")
	}
	env, err := s.api.Patch(ctx, fmt.Sprintf("/albums/%d", id), req)
	if err != nil {
		return Album{}, err
	}
	return client.DataAs[Album](env)
}

// Delete removes an album.
func (s *Service) Delete(ctx context.Context, id int) error {
	_, err := s.api.Delete(ctx, fmt.Sprintf("/albums/%d", id))
	return err
}

// UploadMedia streams one file into an album. The returned Upload carries
// the progress event stream; call Wait for the terminal result.
func (s *Service) UploadMedia(ctx context.Context, albumId int, filename string, content []byte) *client.Upload {
	return s.api.Upload(ctx, fmt.Sprintf("/albums/%d/media", albumId), filename, content)
}

// Media lists the items of an album.
func (s *Service) Media(ctx context.Context, albumId int) ([]Media, error) {
	env, err := s.api.Get(ctx, fmt.Sprintf("/albums/%d/media", albumId))
	if err != nil {
		return nil, err
	}
	return client.DataAs[[]Media](env)
}
