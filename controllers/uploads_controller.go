package controllers

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"lms/config"
	"lms/storage"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const defaultContentType = "application/octet-stream"

// UploadsController relays client uploads into object storage and streams
// progress back over a text/event-stream response. The request body is
// consumed chunk by chunk; files are never materialized in memory.
type UploadsController struct {
	Cfg      *config.Config
	Uploader *storage.Uploader
	Logger   *log.Logger
}

func NewUploadsController(cfg *config.Config, uploader *storage.Uploader, logger *log.Logger) *UploadsController {
	return &UploadsController{Cfg: cfg, Uploader: uploader, Logger: logger}
}

// [+] Upload godoc
// @Summary Upload a file to object storage
// @Description Streams a multipart file into the store, reporting progress over SSE
// @Tags uploads
// @Accept multipart/form-data
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /uploads [post]
func (uc *UploadsController) Upload(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, uc.Cfg); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	if uc.Uploader == nil {
		return utils.InternalServerError(c, "Object storage is not configured")
	}

	mediaType, params, err := mime.ParseMediaType(string(c.Request().Header.ContentType()))
	if err != nil || mediaType != "multipart/form-data" || params["boundary"] == "" {
		return utils.BadRequest(c, "Expected a multipart form upload")
	}

	// Consumed inside the stream writer below, concurrently with the
	// response: receive-from-client and send-to-store overlap.
	body := c.Context().RequestBodyStream()
	form := multipart.NewReader(body, params["boundary"])

	folder := c.Query("folder")
	// Without an explicit size field the whole request length stands in for
	// the file size. It includes multipart boundary and field overhead, so
	// percentages derived from it slightly under-report; the terminal done
	// event always carries the exact stored size.
	declaredTotal := int64(c.Request().Header.ContentLength())

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache, no-transform")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		uc.stream(w, form, folder, declaredTotal)
	}))

	return nil
}

// stream walks the multipart payload, uploads the first file part and emits
// the event sequence: zero or more progress events, then exactly one
// terminal done or error event.
func (uc *UploadsController) stream(w *bufio.Writer, form *multipart.Reader, folder string, total int64) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fail := func(msg string) {
		_ = storage.WriteEvent(w, storage.Event{Kind: storage.EventError, Err: msg})
	}

	// Plain fields may precede the file part; "folder" and "size" are
	// honored, everything else is skipped.
	var part *multipart.Part
	size := int64(-1)
	for {
		p, err := form.NextPart()
		if err == io.EOF {
			fail("No file in request")
			return
		}
		if err != nil {
			fail("Malformed multipart payload")
			return
		}
		if p.FileName() == "" {
			buf, _ := io.ReadAll(io.LimitReader(p, 1024))
			switch p.FormName() {
			case "folder":
				folder = string(bytes.TrimSpace(buf))
			case "size":
				if v, err := strconv.ParseInt(strings.TrimSpace(string(buf)), 10, 64); err == nil && v > 0 {
					size = v
					total = v
				}
			}
			p.Close()
			continue
		}
		part = p
		break
	}
	defer part.Close()

	name := filepath.Base(part.FileName())
	key := storage.GenerateKey(name, folder)

	fallback := part.Header.Get("Content-Type")
	if fallback == "" {
		fallback = defaultContentType
	}
	contentType := storage.ResolveContentType(name, fallback)

	tracker := storage.NewProgressTracker(total)
	onProgress := func(loaded int64) {
		pct, ok := tracker.Update(loaded)
		if !ok {
			return
		}
		e := storage.Event{Kind: storage.EventProgress, Progress: pct, Loaded: loaded, Total: total}
		if err := storage.WriteEvent(w, e); err != nil {
			// Client went away; abort the transfer so no multipart session
			// is left behind.
			cancel()
		}
	}

	obj, err := uc.Uploader.Upload(ctx, part, size, key, contentType, onProgress)
	if err != nil {
		uc.Logger.Printf("upload %s failed: %v", key, err)
		fail("Upload failed: " + err.Error())
		return
	}

	_ = storage.WriteEvent(w, storage.Event{
		Kind:        storage.EventDone,
		Key:         obj.Key,
		URL:         obj.URL,
		Name:        name,
		ContentType: contentType,
		Size:        obj.Size,
	})
}
