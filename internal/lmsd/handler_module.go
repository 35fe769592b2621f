package lmsd

import (
	"net/http"

	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
	"github.com/labstack/echo/v4"
)

type moduleForm struct {
	CourseID    string `json:"courseId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// ModuleHandler module tree endpoints
type ModuleHandler struct {
	Data      *Dataset
	Validator validate.Validator
}

// NewModuleHandler create a module controller instance
func NewModuleHandler(Data *Dataset, Validator validate.Validator) *ModuleHandler {
	return &ModuleHandler{Data: Data, Validator: Validator}
}

// HandleGetModulesByCourse modules of a course with embedded lectures.
// The deployed contract overloads /modules/:id as the by-course query,
// so the path param here is a course id
func (mh *ModuleHandler) HandleGetModulesByCourse(c echo.Context) error {
	return c.JSON(http.StatusOK, mh.Data.ModulesWithLectures(c.Param("id")))
}

// HandleCreateModule ...
func (mh *ModuleHandler) HandleCreateModule(c echo.Context) error {
	post := new(moduleForm)
	if err := c.Bind(post); err != nil {
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, "Failed to bind module entity"))
	}
	if fields := mh.Validator.Struct(post); fields != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", fields))
	}
	mod, err := mh.Data.CreateModule(post.CourseID, post.Title, post.Description)
	if err != nil {
		if err == ErrNotFound {
			return c.JSON(http.StatusNotFound, NewRESTStandardError(http.StatusNotFound, "Course not found"))
		}
		return err
	}
	return c.JSON(http.StatusCreated, mod)
}

// HandleUpdateModule ...
func (mh *ModuleHandler) HandleUpdateModule(c echo.Context) error {
	post := new(moduleForm)
	if err := c.Bind(post); err != nil {
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, "Failed to bind module entity"))
	}
	mod, err := mh.Data.UpdateModule(c.Param("id"), post.Title, post.Description)
	if err != nil {
		return c.JSON(http.StatusNotFound, NewRESTStandardError(http.StatusNotFound, "Module not found"))
	}
	return c.JSON(http.StatusOK, mod)
}

// HandleDeleteModule ...
func (mh *ModuleHandler) HandleDeleteModule(c echo.Context) error {
	if err := mh.Data.DeleteModule(c.Param("id")); err != nil {
		return c.JSON(http.StatusNotFound, NewRESTStandardError(http.StatusNotFound, "Module not found"))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
