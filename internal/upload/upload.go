// Package upload handles transient source files: saving multipart uploads
// and remote URLs to the OS temp dir, sanity-checking that they are PDFs,
// and cleaning up afterwards.
package upload

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// fetchTimeout bounds a remote file download.
const fetchTimeout = 60 * time.Second

// SaveTemp writes data to a uniquely named file in the OS temp dir and
// returns its path. The caller is responsible for removing it.
func SaveTemp(data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("file %s is empty", filename)
	}
	tempPath := filepath.Join(os.TempDir(), uuid.New().String()+"_"+filepath.Base(filename))
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save temporary file: %w", err)
	}
	return tempPath, nil
}

// FromMultipart saves an uploaded file part to a temp file.
func FromMultipart(header *multipart.FileHeader) (string, error) {
	if header.Size == 0 {
		return "", fmt.Errorf("file %s is empty", header.Filename)
	}
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file %s: %w", header.Filename, err)
	}
	return SaveTemp(data, header.Filename)
}

// FetchURL downloads a remote PDF to a temp file and returns its path.
func FetchURL(ctx context.Context, rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "", fmt.Errorf("invalid file URL %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s returned status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read download body: %w", err)
	}
	return SaveTemp(data, "download.pdf")
}

// PageCount opens the file as a PDF and returns its page count, erroring
// when the file is not parseable as one.
func PageCount(path string) (int, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("not a readable PDF: %w", err)
	}
	defer file.Close()
	return reader.NumPage(), nil
}

// Remove deletes a temp file, logging failures instead of returning them;
// cleanup problems should never mask the request outcome.
func Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: Failed to remove temporary file %s: %v", path, err)
	}
}
