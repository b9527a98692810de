package handlers

import (
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"stylizer/internal/domain"
	"stylizer/internal/transform"
)

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"webp": {},
}

const (
	defaultWidth         = 1024
	defaultHeight        = 1024
	defaultSteps         = 28
	defaultGuidanceScale = 2.5
)

type submissionResponse struct {
	Message   string `json:"message"`
	JobID     string `json:"job_id"`
	StatusURL string `json:"status_url"`
	ResultURL string `json:"result_url"`
}

// ProcessImage accepts a multipart image upload plus generation parameters
// and queues a stylize job. Back-pressure surfaces as 503: the client is
// expected to retry later.
func (a *App) ProcessImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.Cfg.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			a.error(w, http.StatusRequestEntityTooLarge, "payload_too_large", "File upload is too large.")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "No 'image' file part in the request.")
		return
	}
	defer file.Close()

	if !isAllowedFilename(header.Filename) {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid file type. Allowed extensions are: png, jpg, jpeg, webp.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read uploaded file")
		return
	}
	if err := transform.DecodeCheck(data); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Cannot identify image file. The file may be corrupt.")
		return
	}

	params, err := a.parseParams(r, data)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("api: bad submission")
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	id, err := a.Scheduler.Submit(params)
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			a.error(w, http.StatusServiceUnavailable, "capacity_exceeded",
				"Server is currently busy or unable to queue new jobs. Please try again later.")
			return
		}
		a.Logger.Error().Err(err).Msg("api: submit failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}

	a.Logger.Info().Str("job_id", id).Msg("api: job accepted")
	a.json(w, http.StatusAccepted, submissionResponse{
		Message:   "Request accepted and queued.",
		JobID:     id,
		StatusURL: "/status/" + id,
		ResultURL: "/result/" + id,
	})
}

// JobStatus reports the lifecycle view of a job, including its queue
// position while it waits for a worker.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "job_id")
	view, err := a.Scheduler.Status(id)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "Job ID not found.")
		return
	}
	a.json(w, http.StatusOK, view)
}

// JobResult serves the stylized image once the job has completed. While the
// job is still queued or processing it answers 202 with the current status;
// a failed job answers 500 with the recorded reason.
func (a *App) JobResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "job_id")
	key, err := a.Scheduler.Result(id)
	if err != nil {
		var failure *domain.Failure
		switch {
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusNotFound, "not_found", "Job ID not found.")
		case errors.Is(err, domain.ErrNotReady):
			view, verr := a.Scheduler.Status(id)
			if verr != nil {
				a.error(w, http.StatusNotFound, "not_found", "Job ID not found.")
				return
			}
			a.json(w, http.StatusAccepted, map[string]any{
				"message": "Job is not yet complete.",
				"status":  view.Status,
			})
		case errors.As(err, &failure):
			a.error(w, http.StatusInternalServerError, string(failure.Kind), failure.Message)
		default:
			a.error(w, http.StatusInternalServerError, "internal", "failed to load result")
		}
		return
	}

	f, err := a.Store.Open(key)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", id).Str("result_key", key).Msg("api: result file missing")
		a.error(w, http.StatusInternalServerError, "internal", "Result file is missing.")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}

// parseParams resolves the form fields against defaults and the selected
// style profile.
func (a *App) parseParams(r *http.Request, image []byte) (domain.StylizeParams, error) {
	params := domain.StylizeParams{
		ProfileID:      r.FormValue("profile"),
		Prompt:         r.FormValue("prompt"),
		NegativePrompt: r.FormValue("negative_prompt"),
		Image:          image,
	}

	var err error
	if params.Width, err = formInt(r, "width", defaultWidth); err != nil {
		return domain.StylizeParams{}, err
	}
	if params.Height, err = formInt(r, "height", defaultHeight); err != nil {
		return domain.StylizeParams{}, err
	}
	if params.Steps, err = formInt(r, "num_inference_steps", defaultSteps); err != nil {
		return domain.StylizeParams{}, err
	}
	if params.GuidanceScale, err = formFloat(r, "guidance_scale", defaultGuidanceScale); err != nil {
		return domain.StylizeParams{}, err
	}
	if params.Width <= 0 || params.Height <= 0 {
		return domain.StylizeParams{}, errors.New("width and height must be positive")
	}

	seedSet := false
	if v := r.FormValue("seed"); v != "" {
		seed, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			return domain.StylizeParams{}, errors.New("invalid value for parameter seed")
		}
		params.Seed = seed
		seedSet = true
	}

	if params.ProfileID != "" {
		p, ok := a.Catalog.Find(params.ProfileID)
		if !ok {
			return domain.StylizeParams{}, errors.New("unknown style profile")
		}
		if params.Prompt == "" {
			params.Prompt = p.Prompt
		}
		if params.NegativePrompt == "" {
			params.NegativePrompt = p.NegativePrompt
		}
		if !seedSet {
			params.Seed = p.Seed
			seedSet = true
		}
	}
	if !seedSet {
		params.Seed = rand.Int63()
	}

	return params, nil
}

func formInt(r *http.Request, key string, fallback int) (int, error) {
	v := r.FormValue(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("invalid value for parameter " + key)
	}
	return i, nil
}

func formFloat(r *http.Request, key string, fallback float64) (float64, error) {
	v := r.FormValue(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New("invalid value for parameter " + key)
	}
	return f, nil
}

func isAllowedFilename(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[i+1:])]
	return ok
}
