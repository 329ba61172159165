package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewAudioHandler()
	router.GET("/api/v1/health", h.HealthCheck)
	router.POST("/api/v1/stego/encode", h.Encode)
	router.POST("/api/v1/stego/decode", h.Decode)
	router.POST("/api/v1/stego/analyze", h.Analyze)
	router.POST("/api/v1/stego/capacity", h.Capacity)
	return router
}

// testWAV builds a minimal 16-bit mono WAV with bodyLen sample bytes.
func testWAV(bodyLen int) []byte {
	pcm := make([]byte, bodyLen)
	for i := range pcm {
		pcm[i] = byte(i*31 + 5)
	}

	var body bytes.Buffer
	body.WriteString("WAVE")
	body.WriteString("fmt ")
	binary.Write(&body, binary.LittleEndian, uint32(16))
	binary.Write(&body, binary.LittleEndian, uint16(1))
	binary.Write(&body, binary.LittleEndian, uint16(1))
	binary.Write(&body, binary.LittleEndian, uint32(44100))
	binary.Write(&body, binary.LittleEndian, uint32(44100*2))
	binary.Write(&body, binary.LittleEndian, uint16(2))
	binary.Write(&body, binary.LittleEndian, uint16(16))
	body.WriteString("data")
	binary.Write(&body, binary.LittleEndian, uint32(len(pcm)))
	body.Write(pcm)

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

type formFile struct {
	field, name string
	data        []byte
}

func multipartBody(t *testing.T, files []formFile, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(f.data)
	}
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestEncodeDecodeCycle(t *testing.T) {
	router := newTestRouter()
	secret := []byte("Hello, world!\n")

	body, contentType := multipartBody(t,
		[]formFile{
			{field: "carrier", name: "carrier.wav", data: testWAV(64 * 1024)},
			{field: "secrets", name: "hello.txt", data: secret},
		},
		map[string]string{"quality": "normal"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stego/encode", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("encode status = %d, body = %s", rec.Code, rec.Body.String())
	}
	stegoBytes := rec.Body.Bytes()
	if len(stegoBytes) != len(testWAV(64*1024)) {
		t.Errorf("stego output length = %d, want %d", len(stegoBytes), len(testWAV(64*1024)))
	}

	body, contentType = multipartBody(t,
		[]formFile{{field: "stego_file", name: "stego.wav", data: stegoBytes}},
		nil,
	)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/stego/decode", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("decode status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Files   []struct {
			Name    string `json:"name"`
			DataB64 string `json:"data_base64"`
		} `json:"files"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal decode response: %v", err)
	}
	if !resp.Success || len(resp.Files) != 1 || resp.Files[0].Name != "hello.txt" {
		t.Fatalf("decode response = %+v", resp)
	}
	got, err := base64.StdEncoding.DecodeString(resp.Files[0].DataB64)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Errorf("extracted = %q, want %q", got, secret)
	}
}

func TestEncodeMissingCarrier(t *testing.T) {
	router := newTestRouter()
	body, contentType := multipartBody(t,
		[]formFile{{field: "secrets", name: "s.txt", data: []byte("x")}},
		nil,
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stego/encode", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeCleanCarrier(t *testing.T) {
	router := newTestRouter()
	body, contentType := multipartBody(t,
		[]formFile{{field: "stego_file", name: "clean.wav", data: testWAV(8192)}},
		nil,
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stego/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		HasHiddenData bool `json:"has_hidden_data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.HasHiddenData {
		t.Error("clean carrier reported as holding hidden data")
	}
}

func TestCapacityEndpoint(t *testing.T) {
	router := newTestRouter()
	body, contentType := multipartBody(t,
		[]formFile{{field: "carrier", name: "c.wav", data: testWAV(32 * 1024)}},
		map[string]string{"quality": "low"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stego/capacity", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		MaxPayloadBytes int `json:"max_payload_bytes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// 32 KiB body at LOW (4 bits/byte) holds roughly half its size.
	if resp.MaxPayloadBytes < 16000 || resp.MaxPayloadBytes > 16400 {
		t.Errorf("max_payload_bytes = %d, want ~16350", resp.MaxPayloadBytes)
	}
}
