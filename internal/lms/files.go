package lms

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"vast/internal/fileutil"
	"vast/internal/services"
)

const downloadFileMode = 0o644

// GetFile fetches file metadata: display name, stored filename and the
// signed download URL.
func (c *Client) GetFile(ctx context.Context, fileID int64) (*FileInfo, error) {
	var info FileInfo
	if _, err := c.getJSON(ctx, c.endpoint(fmt.Sprintf("/files/%d", fileID), nil), &info); err != nil {
		return nil, err
	}
	if info.ID == 0 {
		info.ID = fileID
	}
	return &info, nil
}

// DownloadFile resolves the file's download URL and streams its bytes to
// dest. The data lands in a temp file beside dest and is renamed into place
// only after the transfer completes.
func (c *Client) DownloadFile(ctx context.Context, fileID int64, dest string) (int64, error) {
	info, err := c.GetFile(ctx, fileID)
	if err != nil {
		return 0, err
	}
	return c.Download(ctx, *info, dest)
}

// Download streams an already resolved file to dest. Files without a signed
// URL are fetched from the /files/{id}/download endpoint.
func (c *Client) Download(ctx context.Context, info FileInfo, dest string) (int64, error) {
	target := strings.TrimSpace(info.URL)
	if target == "" {
		target = c.endpoint(fmt.Sprintf("/files/%d/download", info.ID), nil)
	} else if ref, err := url.Parse(target); err == nil && !ref.IsAbs() {
		target = c.baseURL + "/" + strings.TrimLeft(target, "/")
	}

	resp, err := c.get(ctx, target, "")
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	written, err := fileutil.WriteStreamAtomic(dest, resp.Body, downloadFileMode)
	if err != nil {
		return written, services.Wrap(services.ErrFilesystem, componentName, "download file", dest, err)
	}
	return written, nil
}
