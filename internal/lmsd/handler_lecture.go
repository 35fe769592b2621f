package lmsd

import (
	"net/http"
	"strconv"

	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
	"github.com/labstack/echo/v4"
)

type lectureStatusForm struct {
	LectureID   string `json:"lectureId"`
	IsCompleted bool   `json:"isCompleted"`
	IsUnlocked  bool   `json:"isUnlocked"`
}

// LectureHandler lecture endpoints, including the progression PATCH
type LectureHandler struct {
	Data      *Dataset
	Validator validate.Validator
}

// NewLectureHandler create a lecture controller instance
func NewLectureHandler(Data *Dataset, Validator validate.Validator) *LectureHandler {
	return &LectureHandler{Data: Data, Validator: Validator}
}

// HandleGetLectures ...
func (lh *LectureHandler) HandleGetLectures(c echo.Context) error {
	return c.JSON(http.StatusOK, lh.Data.Lectures())
}

// HandleGetLectureByID ...
func (lh *LectureHandler) HandleGetLectureByID(c echo.Context) error {
	lec, err := lh.Data.LectureByID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, NewRESTStandardError(http.StatusNotFound, "Lecture not found"))
	}
	return c.JSON(http.StatusOK, lec)
}

// HandleCreateLecture accepts multipart form data with note attachments
func (lh *LectureHandler) HandleCreateLecture(c echo.Context) error {
	form := bindLectureForm(c)
	if fields := lh.Validator.Struct(form); fields != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", fields))
	}
	lec, err := lh.Data.CreateLecture(form.ModuleID, form.Title, form.Duration, form.VideoURL, form.Notes, false)
	if err != nil {
		if err == ErrNotFound {
			return c.JSON(http.StatusNotFound, NewRESTStandardError(http.StatusNotFound, "Module not found"))
		}
		return err
	}
	return c.JSON(http.StatusCreated, lec)
}

// HandleUpdateLecture ...
func (lh *LectureHandler) HandleUpdateLecture(c echo.Context) error {
	form := bindLectureForm(c)
	if fields := lh.Validator.Struct(form); fields != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", fields))
	}
	lec, err := lh.Data.UpdateLecture(c.Param("id"), form.Title, form.Duration, form.VideoURL, form.Notes)
	if err != nil {
		return c.JSON(http.StatusNotFound, NewRESTStandardError(http.StatusNotFound, "Lecture not found"))
	}
	return c.JSON(http.StatusOK, lec)
}

// HandleUpdateLectureStatus progression flags PATCH
func (lh *LectureHandler) HandleUpdateLectureStatus(c echo.Context) error {
	post := new(lectureStatusForm)
	if err := c.Bind(post); err != nil {
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, "Failed to bind lecture status"))
	}
	lec, err := lh.Data.SetLectureStatus(c.Param("id"), post.IsCompleted, post.IsUnlocked)
	if err != nil {
		return c.JSON(http.StatusNotFound, NewRESTStandardError(http.StatusNotFound, "Lecture not found"))
	}
	return c.JSON(http.StatusOK, lec)
}

// HandleDeleteLecture ...
func (lh *LectureHandler) HandleDeleteLecture(c echo.Context) error {
	if err := lh.Data.DeleteLecture(c.Param("id")); err != nil {
		return c.JSON(http.StatusNotFound, NewRESTStandardError(http.StatusNotFound, "Lecture not found"))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type lectureForm struct {
	ModuleID string   `json:"moduleId" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Duration int      `json:"duration" validate:"gte=0"`
	VideoURL string   `json:"videoUrl" validate:"required"`
	Notes    []string `json:"notes"`
}

func bindLectureForm(c echo.Context) *lectureForm {
	duration, _ := strconv.Atoi(c.FormValue("duration"))
	form := &lectureForm{
		ModuleID: c.FormValue("moduleId"),
		Title:    c.FormValue("title"),
		Duration: duration,
		VideoURL: c.FormValue("videoUrl"),
	}
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		for _, file := range mf.File["notes"] {
			// note content is not persisted by the dev server, only its name
			form.Notes = append(form.Notes, "/uploads/"+file.Filename)
		}
	}
	return form
}
