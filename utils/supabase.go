package utils

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

const objectPathMarker = "/storage/v1/object/"

// SupabaseStore keeps product images in a public Supabase Storage bucket.
type SupabaseStore struct {
	client  *storage.Client
	baseURL string
	bucket  string
}

func NewSupabaseStore(supabaseURL, key, bucket string) *SupabaseStore {
	base := strings.TrimRight(supabaseURL, "/")
	return &SupabaseStore{
		client:  storage.NewClient(base+"/storage/v1", key, nil),
		baseURL: base,
		bucket:  bucket,
	}
}

// Put uploads data under key and returns its public URL:
// <SUPABASE_URL>/storage/v1/object/public/<bucket>/<key>
func (s *SupabaseStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	options := storage.FileOptions{ContentType: &contentType}
	if _, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(data), options); err != nil {
		return "", fmt.Errorf("supabase upload %s: %w", key, err)
	}
	return fmt.Sprintf("%s%spublic/%s/%s", s.baseURL, objectPathMarker, s.bucket, key), nil
}

// Delete removes the object a public URL points at.
func (s *SupabaseStore) Delete(ctx context.Context, publicURL string) error {
	if publicURL == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	bucket, object, err := ParseObjectURL(publicURL)
	if err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(bucket, []string{object}); err != nil {
		return fmt.Errorf("supabase delete %s/%s: %w", bucket, object, err)
	}
	return nil
}

// ParseObjectURL extracts bucket and object path from a Supabase object URL of
// any access kind, dropping any query string.
func ParseObjectURL(publicURL string) (bucket, object string, err error) {
	idx := strings.Index(publicURL, objectPathMarker)
	if idx == -1 {
		return "", "", fmt.Errorf("not a storage object url: %s", publicURL)
	}

	rest := publicURL[idx+len(objectPathMarker):]
	for _, access := range []string{"public/", "sign/", "authenticated/"} {
		if strings.HasPrefix(rest, access) {
			rest = rest[len(access):]
			break
		}
	}
	if q := strings.IndexAny(rest, "?#"); q != -1 {
		rest = rest[:q]
	}

	parts := strings.SplitN(rest, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("cannot parse bucket/object from url: %s", publicURL)
	}
	object = parts[1]
	if u, err := url.PathUnescape(object); err == nil {
		object = u
	}
	return parts[0], object, nil
}
