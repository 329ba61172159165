// Package handlers is made to handle requests
package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ghostbit/audio"
	"ghostbit/container"
	"ghostbit/stego"
	"ghostbit/stegoerr"
)

// AudioHandler wires the HTTP API onto the Coordinator/Analyzer/capacity
// core. Uploads are staged to temp files, processed fully in memory, and
// streamed back; nothing persists between requests.
type AudioHandler struct{}

// NewAudioHandler returns an AudioHandler. It holds no state.
func NewAudioHandler() *AudioHandler {
	return &AudioHandler{}
}

// StegoResponse is the common JSON envelope for handler results, carrying
// a request ID so a client can correlate responses with server logs.
type StegoResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type fileEntry struct {
	Name     string `json:"name"`
	DataB64  string `json:"data_base64,omitempty"`
	SizeByte int    `json:"size_bytes"`
}

func (h *AudioHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "ghostbit API is running",
		"version": "1.0.0",
	})
}

// saveUpload writes a multipart file to a temp path with its original
// extension, since audio.DecodeToPCM dispatches on file extension.
func saveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(fh.Filename))
	dst, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return tmpPath, nil
}

func respondError(c *gin.Context, requestID string, err error) {
	status := http.StatusInternalServerError
	if se, ok := err.(*stegoerr.Error); ok {
		switch se.Code {
		case stegoerr.CodeCapacity, stegoerr.CodeFormat:
			status = http.StatusBadRequest
		case stegoerr.CodeAuth, stegoerr.CodeKeyRequired:
			status = http.StatusUnauthorized
		case stegoerr.CodeCancelled:
			status = http.StatusConflict
		case stegoerr.CodeIO:
			status = http.StatusInternalServerError
		}
	}
	c.JSON(status, StegoResponse{Success: false, Message: err.Error(), RequestID: requestID})
}

// Encode handles POST /api/v1/stego/encode: a carrier file, one or more
// secret files, an optional password, and a quality mode.
func (h *AudioHandler) Encode(c *gin.Context) {
	requestID := uuid.NewString()

	if err := c.Request.ParseMultipartForm(64 << 20); err != nil {
		respondError(c, requestID, stegoerr.Format("failed to parse form"))
		return
	}

	mode, ok := stego.ParseQualityMode(c.DefaultPostForm("quality", "normal"))
	if !ok {
		respondError(c, requestID, stegoerr.Format("quality must be one of high, normal, low"))
		return
	}
	password := c.PostForm("password")

	carrierFHs := c.Request.MultipartForm.File["carrier"]
	if len(carrierFHs) == 0 {
		respondError(c, requestID, stegoerr.Format("carrier file is required"))
		return
	}
	carrierFH := carrierFHs[0]
	carrierPath, err := saveUpload(carrierFH)
	if err != nil {
		respondError(c, requestID, stegoerr.IO("failed to stage carrier file", err))
		return
	}
	defer os.Remove(carrierPath)

	secretHeaders := c.Request.MultipartForm.File["secrets"]
	if len(secretHeaders) == 0 {
		respondError(c, requestID, stegoerr.Format("at least one secret file is required"))
		return
	}

	var files []container.File
	for _, fh := range secretHeaders {
		src, err := fh.Open()
		if err != nil {
			respondError(c, requestID, stegoerr.IO("failed to open secret file", err))
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			respondError(c, requestID, stegoerr.IO("failed to read secret file", err))
			return
		}
		files = append(files, container.File{Name: fh.Filename, Data: data})
	}

	samples, headerLen, _, err := audio.DecodeToPCM(carrierPath)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	raw, err := os.ReadFile(carrierPath)
	if err != nil {
		respondError(c, requestID, stegoerr.IO("failed to re-read carrier", err))
		return
	}

	// carrier is trimmed to header+sample-body; any trailing chunks past
	// the sample data (rare, but legal in WAV) are reattached untouched
	// after encoding so they are never mistaken for carrier bytes.
	trailer := raw[headerLen+len(samples):]
	carrier := raw[:headerLen+len(samples)]

	coordinator := stego.NewCoordinator(nil)
	stegoOut, report, err := coordinator.Encode(carrier, headerLen, files, mode, password)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	out := make([]byte, 0, len(stegoOut)+len(trailer))
	out = append(out, stegoOut...)
	out = append(out, trailer...)

	outputFilename := fmt.Sprintf("%s_stego%s", trimExt(carrierFH.Filename), filepath.Ext(carrierFH.Filename))

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputFilename))
	c.Header("Content-Length", strconv.Itoa(len(out)))
	c.Header("X-Request-Id", requestID)
	c.Header("X-Stego-PSNR", fmt.Sprintf("%.2f", report.PSNRdB))
	c.Header("X-Stego-Container-Size", strconv.Itoa(report.ContainerSize))
	c.Data(http.StatusOK, "application/octet-stream", out)
}

// Decode handles POST /api/v1/stego/decode: a stego file and an optional
// password. Every extracted file is returned base64-encoded in a single
// JSON response, since a stego container may hold more than one file.
func (h *AudioHandler) Decode(c *gin.Context) {
	requestID := uuid.NewString()

	if err := c.Request.ParseMultipartForm(64 << 20); err != nil {
		respondError(c, requestID, stegoerr.Format("failed to parse form"))
		return
	}

	password := c.PostForm("password")

	stegoFH, _, err := c.Request.FormFile("stego_file")
	if err != nil {
		respondError(c, requestID, stegoerr.Format("stego_file is required"))
		return
	}
	defer stegoFH.Close()
	header := c.Request.MultipartForm.File["stego_file"][0]

	stegoPath, err := saveUpload(header)
	if err != nil {
		respondError(c, requestID, stegoerr.IO("failed to stage stego file", err))
		return
	}
	defer os.Remove(stegoPath)

	samples, _, _, err := audio.DecodeToPCM(stegoPath)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	coordinator := stego.NewCoordinator(nil)
	files, err := coordinator.Decode(samples, 0, password, nil)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	entries := make([]fileEntry, len(files))
	for i, f := range files {
		entries[i] = fileEntry{
			Name:     f.Name,
			DataB64:  base64.StdEncoding.EncodeToString(f.Data),
			SizeByte: len(f.Data),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"request_id": requestID,
		"files":      entries,
	})
}

// Analyze handles POST /api/v1/stego/analyze: read-only inspection, never
// writes extracted payload to disk.
func (h *AudioHandler) Analyze(c *gin.Context) {
	requestID := uuid.NewString()

	if err := c.Request.ParseMultipartForm(64 << 20); err != nil {
		respondError(c, requestID, stegoerr.Format("failed to parse form"))
		return
	}
	password := c.PostForm("password")

	stegoFH, _, err := c.Request.FormFile("stego_file")
	if err != nil {
		respondError(c, requestID, stegoerr.Format("stego_file is required"))
		return
	}
	defer stegoFH.Close()
	header := c.Request.MultipartForm.File["stego_file"][0]

	stegoPath, err := saveUpload(header)
	if err != nil {
		respondError(c, requestID, stegoerr.IO("failed to stage stego file", err))
		return
	}
	defer os.Remove(stegoPath)

	samples, _, _, err := audio.DecodeToPCM(stegoPath)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	report := stego.NewAnalyzer().Analyze(samples, 0, password)

	files := make([]fileEntry, len(report.Files))
	for i, f := range report.Files {
		files[i] = fileEntry{Name: f.Name, SizeByte: f.Size}
	}

	// Carrier tags ride in the untouched header region; surface them when
	// readable, omit them when not.
	var carrierTags *audio.TagInfo
	if tags, err := audio.ReadTags(stegoPath); err == nil && !tags.Empty() {
		carrierTags = tags
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"request_id":      requestID,
		"has_hidden_data": report.HasHiddenData,
		"cipher_version":  report.CipherVersion,
		"mode":            report.Mode.String(),
		"file_count":      report.FileCount,
		"total_size":      report.TotalSize,
		"files":           files,
		"carrier_tags":    carrierTags,
	})
}

// Capacity handles POST /api/v1/stego/capacity: a carrier file plus quality
// and an estimated file count, returns the generous MaxPayloadBytes
// estimate.
func (h *AudioHandler) Capacity(c *gin.Context) {
	requestID := uuid.NewString()

	if err := c.Request.ParseMultipartForm(64 << 20); err != nil {
		respondError(c, requestID, stegoerr.Format("failed to parse form"))
		return
	}

	mode, ok := stego.ParseQualityMode(c.DefaultPostForm("quality", "normal"))
	if !ok {
		respondError(c, requestID, stegoerr.Format("quality must be one of high, normal, low"))
		return
	}
	estimatedFiles, _ := strconv.Atoi(c.DefaultPostForm("estimated_files", "1"))

	carrierFHs := c.Request.MultipartForm.File["carrier"]
	if len(carrierFHs) == 0 {
		respondError(c, requestID, stegoerr.Format("carrier file is required"))
		return
	}

	carrierPath, err := saveUpload(carrierFHs[0])
	if err != nil {
		respondError(c, requestID, stegoerr.IO("failed to stage carrier file", err))
		return
	}
	defer os.Remove(carrierPath)

	samples, _, _, err := audio.DecodeToPCM(carrierPath)
	if err != nil {
		respondError(c, requestID, err)
		return
	}

	maxBytes := stego.MaxPayloadBytes(len(samples), mode, estimatedFiles)

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"request_id":        requestID,
		"max_payload_bytes": maxBytes,
	})
}

func trimExt(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}
