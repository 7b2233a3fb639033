package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/tracys-match/internal/models"
	"github.com/illegalcall/tracys-match/internal/photos"
	"github.com/illegalcall/tracys-match/internal/pkg/supabase"
	"github.com/illegalcall/tracys-match/internal/profiles"
	"github.com/illegalcall/tracys-match/internal/session"
)

// daterProfile loads the dater's own row. A missing row reads as empty.
func (s *Server) daterProfile(c *fiber.Ctx, data *session.Data) (models.DaterProfile, error) {
	p, err := s.profiles.DaterProfile(c.UserContext(), data.Account())
	if errors.Is(err, profiles.ErrNotFound) {
		return models.DaterProfile{ID: data.UserID, Photos: []string{}}, nil
	}
	if err != nil {
		return models.DaterProfile{}, err
	}
	return p, nil
}

func (s *Server) renderDater(c *fiber.Ctx, status int, sid string, data *session.Data, extra fiber.Map) error {
	profile, err := s.daterProfile(c, data)
	if err != nil {
		s.logger.Error("Failed to load dater profile", "user_id", data.UserID, "error", err)
		return s.renderError(c, err)
	}

	page := fiber.Map{
		"Title":      "Dater dashboard",
		"Email":      data.Email,
		"Candidates": candidateViews(models.RoleDater, s.poolFor(c, sid, data, models.RoleDater)),
		"Bio":        profile.Bio,
		"Photos":     profile.Photos,
		"Activity":   s.recentActivity(c, data.UserID),
	}
	for k, v := range extra {
		page[k] = v
	}
	return c.Status(status).Render("dater", page)
}

func (s *Server) handleDater(c *fiber.Ctx) error {
	sid, data := sessionFrom(c)
	return s.renderDater(c, fiber.StatusOK, sid, data, nil)
}

func (s *Server) handleDaterStatus(c *fiber.Ctx) error {
	sid, data := sessionFrom(c)

	msg, err := s.setStatus(c, sid, data, models.RoleDater)
	if err != nil {
		s.logger.Error("Failed to save pool", "user_id", data.UserID, "error", err)
		return fiber.ErrInternalServerError
	}
	if msg != "" {
		return s.renderDater(c, fiber.StatusUnprocessableEntity, sid, data, fiber.Map{"Message": msg, "Tone": toneError})
	}
	return c.Redirect("/dater", fiber.StatusSeeOther)
}

func (s *Server) handleSaveProfile(c *fiber.Ctx) error {
	sid, data := sessionFrom(c)

	profile, err := s.daterProfile(c, data)
	if err != nil {
		return s.renderError(c, err)
	}
	profile.ID = data.UserID
	profile.Bio = strings.TrimSpace(c.FormValue("bio"))

	if err := s.profiles.SaveDaterProfile(c.UserContext(), data.Account(), profile); err != nil {
		s.logger.Error("Failed to save dater profile", "user_id", data.UserID, "error", err)
		return s.renderDater(c, fiber.StatusUnprocessableEntity, sid, data, fiber.Map{
			"ProfileMessage": supabase.Message(err),
			"ProfileTone":    toneError,
		})
	}

	s.record(c, models.ActivityEvent{AccountID: data.UserID, Kind: models.ActivityProfileSaved})
	return s.renderDater(c, fiber.StatusOK, sid, data, fiber.Map{
		"ProfileMessage": msgProfileSaved,
		"ProfileTone":    toneSuccess,
	})
}

func (s *Server) handleUploadPhotos(c *fiber.Ctx) error {
	sid, data := sessionFrom(c)

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["photos"]
	}
	if len(files) == 0 {
		return s.renderDater(c, fiber.StatusUnprocessableEntity, sid, data, fiber.Map{
			"ProfileMessage": msgNoPhotos,
			"ProfileTone":    toneError,
		})
	}

	results := photos.UploadAll(c.UserContext(), s.backend, data.UserID, data.AccessToken, files, photos.Options{
		Bucket:  s.cfg.Storage.Bucket,
		MaxSize: s.cfg.Storage.MaxSize,
	})
	urls := photos.URLs(results)
	failures := photos.Failures(results)
	photoUploads.WithLabelValues("ok").Add(float64(len(urls)))
	photoUploads.WithLabelValues("failed").Add(float64(len(failures)))

	if len(urls) > 0 {
		profile, err := s.daterProfile(c, data)
		if err != nil {
			return s.renderError(c, err)
		}
		profile.ID = data.UserID
		profile.Photos = append(profile.Photos, urls...)

		if err := s.profiles.SaveDaterProfile(c.UserContext(), data.Account(), profile); err != nil {
			s.logger.Error("Failed to save photo list", "user_id", data.UserID, "error", err)
			failures = append(failures, supabase.Message(err))
			urls = nil
		} else {
			s.record(c, models.ActivityEvent{
				AccountID: data.UserID,
				Kind:      models.ActivityPhotoUploaded,
				Detail:    photoCount(len(urls)),
			})
		}
	}

	s.logger.Info("Photo upload finished", "user_id", data.UserID, "uploaded", len(urls), "failed", len(failures))

	page := fiber.Map{"Failures": failures}
	status := fiber.StatusOK
	switch {
	case len(failures) == 0:
		page["ProfileMessage"], page["ProfileTone"] = "Uploaded "+photoCount(len(urls))+".", toneSuccess
	case len(urls) == 0:
		status = fiber.StatusUnprocessableEntity
		page["ProfileMessage"], page["ProfileTone"] = "No photos were uploaded.", toneError
	default:
		page["ProfileMessage"], page["ProfileTone"] = fmt.Sprintf("Uploaded %s, %d failed.", photoCount(len(urls)), len(failures)), toneError
	}
	return s.renderDater(c, status, sid, data, page)
}

func photoCount(n int) string {
	if n == 1 {
		return "1 photo"
	}
	return fmt.Sprintf("%d photos", n)
}
