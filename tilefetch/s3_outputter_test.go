package tilefetch

import (
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

type fakeUploader struct {
	s3manageriface.UploaderAPI
	uploads map[string][]byte
	types   map[string]string
}

func (u *fakeUploader) Upload(input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	key := aws.StringValue(input.Bucket) + "/" + aws.StringValue(input.Key)
	u.uploads[key] = body
	u.types[key] = aws.StringValue(input.ContentType)
	return &s3manager.UploadOutput{}, nil
}

func TestS3Outputter(t *testing.T) {
	uploader := &fakeUploader{uploads: make(map[string][]byte), types: make(map[string]string)}
	o := NewS3OutputterWithUploader(uploader, "ground-station", "osm")

	entry, _ := NewTileEntry("13/2262/3182.png", "https://c.tile.openstreetmap.org/13/2262/3182.png")

	if err := o.Prepare(entry); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if err := o.Save(entry, pngBytes); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	key := "ground-station/osm/13/2262/3182.png"
	if string(uploader.uploads[key]) != string(pngBytes) {
		t.Fatalf("Expected upload at %s, got %v", key, uploader.uploads)
	}

	if uploader.types[key] != "image/png" {
		t.Fatalf("content type = %q", uploader.types[key])
	}
}
