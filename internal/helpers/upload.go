package helpers

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
)

// FileUpload is an uploaded form file handed to an Uploader.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, folder string, file *FileUpload) (string, error)
}

// ObjectName builds a collision-free object key that keeps the original
// file extension.
func ObjectName(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(folder, uuid.New().String()+ext)
}

type supabaseStorage interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketId string, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// SupabaseUploader writes files into a public Supabase Storage bucket.
type SupabaseUploader struct {
	storage supabaseStorage
	bucket  string
}

func NewSupabaseUploader(storage supabaseStorage, bucket string) *SupabaseUploader {
	return &SupabaseUploader{storage: storage, bucket: bucket}
}

func (su *SupabaseUploader) Upload(ctx context.Context, folder string, file *FileUpload) (string, error) {
	if file == nil || file.Body == nil {
		return "", fmt.Errorf("no file to upload")
	}
	name := ObjectName(folder, file.Filename)
	contentType := file.ContentType
	upsert := false

	if _, err := su.storage.UploadFile(su.bucket, name, file.Body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return su.storage.GetPublicUrl(su.bucket, name).SignedURL, nil
}

// CloudinaryUploader sends files to Cloudinary under a root folder.
type CloudinaryUploader struct {
	cld  *cloudinary.Cloudinary
	root string
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary, root string) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld, root: root}
}

func (cu *CloudinaryUploader) Upload(ctx context.Context, folder string, file *FileUpload) (string, error) {
	if file == nil || file.Body == nil {
		return "", fmt.Errorf("no file to upload")
	}
	res, err := cu.cld.Upload.Upload(ctx, file.Body, uploader.UploadParams{
		Folder: path.Join(cu.root, folder),
		Tags:   []string{"gatherly"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", file.Filename, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("failed to upload image %s: %s", file.Filename, res.Error.Message)
	}
	return res.SecureURL, nil
}
