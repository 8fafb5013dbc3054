package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"qtui/config"
)

// UploadAudio stores a WAV answer and returns its file uuid. The primary path
// is a presigned PUT; when presigning fails the multipart local-upload
// endpoint is used instead.
func (c *Client) UploadAudio(ctx context.Context, wav []byte) (string, error) {
	presigned, err := c.createPresignedUpload(ctx, "wav")
	if err == nil {
		if putErr := c.putPresigned(ctx, presigned.URL, wav); putErr == nil {
			return presigned.UUID, nil
		} else if config.DebugLog != nil {
			config.DebugLog.Printf("[files] presigned upload failed, falling back to local: %v", putErr)
		}
	} else if config.DebugLog != nil {
		config.DebugLog.Printf("[files] presigned-url create failed, falling back to local: %v", err)
	}

	uuid, err := c.uploadLocal(ctx, wav)
	if err != nil {
		return "", fmt.Errorf("audio upload failed: %w", err)
	}
	return uuid, nil
}

// DownloadAudio fetches a stored WAV by uuid, trying the presigned path first
// and the local download endpoint second.
func (c *Client) DownloadAudio(ctx context.Context, uuid string) ([]byte, error) {
	presigned, err := c.getPresignedDownload(ctx, uuid, "wav")
	if err == nil {
		data, getErr := c.getRaw(ctx, presigned.URL)
		if getErr == nil {
			return data, nil
		}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[files] presigned download failed, falling back to local: %v", getErr)
		}
	}

	path := fmt.Sprintf("%s/file/download-local/?uuid=%s&file_extension=wav", c.baseURL, url.QueryEscape(uuid))
	data, err := c.getRaw(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("audio download failed: %w", err)
	}
	return data, nil
}

func (c *Client) createPresignedUpload(ctx context.Context, ext string) (*PresignedURL, error) {
	body := map[string]string{"file_extension": ext, "user_id": c.userID}
	var presigned PresignedURL
	if err := c.postJSON(ctx, "/file/presigned-url/create", body, &presigned); err != nil {
		return nil, err
	}
	if presigned.URL == "" {
		return nil, fmt.Errorf("empty presigned URL")
	}
	return &presigned, nil
}

func (c *Client) getPresignedDownload(ctx context.Context, uuid, ext string) (*PresignedURL, error) {
	path := fmt.Sprintf("/file/presigned-url/get?uuid=%s&file_extension=%s", url.QueryEscape(uuid), url.QueryEscape(ext))
	var presigned PresignedURL
	if err := c.getJSON(ctx, path, &presigned); err != nil {
		return nil, err
	}
	if presigned.URL == "" {
		return nil, fmt.Errorf("empty presigned URL")
	}
	return &presigned, nil
}

func (c *Client) putPresigned(ctx context.Context, presignedURL string, wav []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, bytes.NewReader(wav))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func (c *Client) uploadLocal(ctx context.Context, wav []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "answer.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(wav); err != nil {
		return "", err
	}
	if err := writer.WriteField("content_type", "audio/wav"); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/file/upload-local", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var result struct {
		UUID string `json:"uuid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.UUID == "" {
		return "", fmt.Errorf("local upload returned no uuid")
	}
	return result.UUID, nil
}

func (c *Client) getRaw(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	return io.ReadAll(resp.Body)
}
