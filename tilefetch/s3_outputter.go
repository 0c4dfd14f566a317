package tilefetch

import (
	"bytes"
	"mime"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// NewS3Outputter uploads tiles to s3://bucket/prefix/{z}/{x}/{y}.png using
// the shared AWS config.
func NewS3Outputter(bucket string, prefix string) (*s3Outputter, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}

	return NewS3OutputterWithUploader(s3manager.NewUploader(sess), bucket, prefix), nil
}

func NewS3OutputterWithUploader(uploader s3manageriface.UploaderAPI, bucket string, prefix string) *s3Outputter {
	return &s3Outputter{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
	}
}

type s3Outputter struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
}

func (o *s3Outputter) key(entry *TileEntry) string {
	return path.Join(o.prefix, entry.Path)
}

func contentType(entry *TileEntry) string {
	if t := mime.TypeByExtension(path.Ext(entry.Path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func (o *s3Outputter) CreateTiles() error {
	return nil
}

func (o *s3Outputter) Prepare(entry *TileEntry) error {
	return nil
}

func (o *s3Outputter) Save(entry *TileEntry, data []byte) error {
	_, err := o.uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(o.key(entry)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(entry)),
	})
	return err
}

func (o *s3Outputter) Close() error {
	return nil
}
