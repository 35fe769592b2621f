package lmsd

import (
	"net/http"
	"strconv"

	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
	"github.com/labstack/echo/v4"
)

// CourseHandler course catalog endpoints
type CourseHandler struct {
	Data      *Dataset
	Validator validate.Validator
}

// NewCourseHandler create a course controller instance
func NewCourseHandler(Data *Dataset, Validator validate.Validator) *CourseHandler {
	return &CourseHandler{Data: Data, Validator: Validator}
}

// HandleGetCourses ...
func (ch *CourseHandler) HandleGetCourses(c echo.Context) error {
	return c.JSON(http.StatusOK, ch.Data.Courses())
}

// HandleGetCourseByID ...
func (ch *CourseHandler) HandleGetCourseByID(c echo.Context) error {
	course, err := ch.Data.CourseByID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, NewRESTStandardError(http.StatusNotFound, "Course not found"))
	}
	return c.JSON(http.StatusOK, course)
}

// HandleCreateCourse accepts multipart form data with an optional thumbnail
func (ch *CourseHandler) HandleCreateCourse(c echo.Context) error {
	form, err := bindCourseForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewRESTStandardError(http.StatusBadRequest, err.Error()))
	}
	if fields := ch.Validator.Struct(form); fields != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", fields))
	}
	course, err := ch.Data.CreateCourse(form.Title, form.Description, form.Price, form.Thumbnail)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, course)
}

// HandleUpdateCourse ...
func (ch *CourseHandler) HandleUpdateCourse(c echo.Context) error {
	form, err := bindCourseForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewRESTStandardError(http.StatusBadRequest, err.Error()))
	}
	if fields := ch.Validator.Struct(form); fields != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", fields))
	}
	course, err := ch.Data.UpdateCourse(c.Param("id"), form.Title, form.Description, form.Price, form.Thumbnail)
	if err != nil {
		return c.JSON(http.StatusNotFound, NewRESTStandardError(http.StatusNotFound, "Course not found"))
	}
	return c.JSON(http.StatusOK, course)
}

// HandleDeleteCourse ...
func (ch *CourseHandler) HandleDeleteCourse(c echo.Context) error {
	if err := ch.Data.DeleteCourse(c.Param("id")); err != nil {
		return c.JSON(http.StatusNotFound, NewRESTStandardError(http.StatusNotFound, "Course not found"))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type courseForm struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Thumbnail   string  `json:"thumbnail"`
}

func bindCourseForm(c echo.Context) (*courseForm, error) {
	price, _ := strconv.ParseFloat(c.FormValue("price"), 64)
	form := &courseForm{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Price:       price,
	}
	if file, err := c.FormFile("thumbnail"); err == nil && file != nil {
		// file content is not persisted by the dev server, only its name
		form.Thumbnail = "/uploads/" + file.Filename
	}
	return form, nil
}
