package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/schema"
)

type fakeS3 struct {
	objects map[string]string
	bucket  string
	key     string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket, f.key = aws.ToString(in.Bucket), aws.ToString(in.Key)
	body, ok := f.objects[f.bucket+"/"+f.key]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		format  schema.Format
	}{
		{"json by extension", "page.json", `[{"tag":"p","children":"hi"}]`, schema.FormatJSON},
		{"yaml by extension", "page.yml", "- tag: p\n  children: hi\n", schema.FormatYAML},
		{"yaml by content", "page.schema", "nodes:\n  - tag: p\n    children: hi\n", schema.FormatYAML},
		{"json by content", "page.schema", `{"nodes":[{"tag":"p","children":"hi"}]}`, schema.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			src, err := Open(context.Background(), path)
			if err != nil {
				t.Fatal(err)
			}
			if src.Format != tt.format {
				t.Errorf("format = %s, want %s", src.Format, tt.format)
			}
			doc, err := src.Document()
			if err != nil {
				t.Fatal(err)
			}
			if len(doc.Nodes) != 1 || doc.Nodes[0].Children.Text() != "hi" {
				t.Errorf("unexpected document: %+v", doc)
			}
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if got := errors.Code(err); got != "E160" {
		t.Errorf("code = %q, want E160", got)
	}
}

func TestOpenTooLarge(t *testing.T) {
	path := writeFile(t, "big.json", strings.Repeat(" ", 100))
	_, err := Open(context.Background(), path, WithMaxSize(10))
	if got := errors.Code(err); got != "E160" {
		t.Errorf("code = %q, want E160", got)
	}
}

func TestOpenStdin(t *testing.T) {
	doc, err := Load(context.Background(), Stdin, WithStdin(strings.NewReader(`{"context":{"n":1},"nodes":[]}`)))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Context["n"] != float64(1) {
		t.Errorf("context = %v", doc.Context)
	}
}

func TestMalformedDocument(t *testing.T) {
	path := writeFile(t, "bad.json", `{"nodes":`)
	_, err := Load(context.Background(), path)
	if got := errors.Code(err); got != "E161" {
		t.Fatalf("code = %q, want E161 (%v)", got, err)
	}
}

func TestOpenS3(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"schemas/pages/home.yaml": "- tag: h1\n  children: Home\n",
	}}
	doc, err := Load(context.Background(), "s3://schemas/pages/home.yaml", WithS3(client))
	if err != nil {
		t.Fatal(err)
	}
	if client.bucket != "schemas" || client.key != "pages/home.yaml" {
		t.Errorf("requested %s/%s", client.bucket, client.key)
	}
	if tag, _ := doc.Nodes[0].TagName(); tag != "h1" {
		t.Errorf("tag = %q", tag)
	}
}

func TestOpenS3Errors(t *testing.T) {
	client := &fakeS3{objects: map[string]string{}}
	for _, loc := range []string{"s3://schemas/missing.json", "s3://schemas", "s3:///key"} {
		if _, err := Open(context.Background(), loc, WithS3(client)); errors.Code(err) != "E160" {
			t.Errorf("%s: err = %v, want E160", loc, err)
		}
	}
	if _, err := Open(context.Background(), "s3://b/k"); errors.Code(err) != "E160" {
		t.Errorf("no client: err = %v, want E160", err)
	}
}

func TestParseS3(t *testing.T) {
	bucket, key, err := ParseS3("s3://my-bucket/a/b.json")
	if err != nil || bucket != "my-bucket" || key != "a/b.json" {
		t.Errorf("got %q %q %v", bucket, key, err)
	}
}

func TestContextSource(t *testing.T) {
	path := writeFile(t, "ctx.yaml", "user:\n  name: Ann\n")
	src, err := Open(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := src.Context()
	if err != nil {
		t.Fatal(err)
	}
	user, _ := ctx["user"].(map[string]any)
	if user["name"] != "Ann" {
		t.Errorf("context = %v", ctx)
	}
}

func TestNewS3Client(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	c := NewS3Client(S3Config{Region: "eu-west-1", Endpoint: "http://localhost:9000", UsePathStyle: true})
	if c.Options().Region != "eu-west-1" {
		t.Errorf("region = %q", c.Options().Region)
	}
	if aws.ToString(c.Options().BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("endpoint = %v", c.Options().BaseEndpoint)
	}
}
