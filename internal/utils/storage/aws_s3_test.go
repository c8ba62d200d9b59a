package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestPublicURLAndKey(t *testing.T) {
	s := NewAwsS3WithClient(nil, "kalori", "eu-north-1", "")
	url := s.PublicURL("meals/dev/abc.jpg")
	if url != "https://kalori.s3.eu-north-1.amazonaws.com/meals/dev/abc.jpg" {
		t.Errorf("PublicURL = %q", url)
	}
	key, ok := s.KeyFromURL(url)
	if !ok || key != "meals/dev/abc.jpg" {
		t.Errorf("KeyFromURL = %q, %v", key, ok)
	}
	if _, ok := s.KeyFromURL("https://elsewhere.example/x.jpg"); ok {
		t.Error("KeyFromURL accepted a foreign URL")
	}
}

func TestUploadBytes(t *testing.T) {
	var gotMethod, gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := s3.New(s3.Options{
		Region:       "eu-north-1",
		BaseEndpoint: aws.String(srv.URL),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	})
	s := NewAwsS3WithClient(client, "kalori", "eu-north-1", srv.URL+"/kalori")

	url, err := s.UploadBytes(context.Background(), "meals/dev/abc.png", []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("UploadBytes: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/kalori/meals/dev/abc.png" {
		t.Errorf("request = %s %s", gotMethod, gotPath)
	}
	if gotType != "image/png" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if string(gotBody) == "" {
		t.Error("empty upload body")
	}
	if url != srv.URL+"/kalori/meals/dev/abc.png" {
		t.Errorf("url = %q", url)
	}
}
