package lmsd

import (
	"fmt"
	"log"
	"strings"

	infra "github.com/Mujahid2000/lms/internal/infrastructure"
	"github.com/Mujahid2000/lms/internal/infrastructure/driver"
	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
	"github.com/Mujahid2000/lms/internal/lmsd/middleware"
	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"
	"go.elastic.co/apm/module/apmechov4"
	"go.uber.org/zap"
)

// Serve run the development API server. It implements the REST contract
// the client consumes, over in-memory data, so the client can be
// developed and tested without the remote deployment
func Serve(option *infra.AppConfig, data *Dataset, blacklist driver.KeyValueDB, logger *zap.Logger) {
	app := echo.New()
	app.HideBanner = true

	jwtUtil := NewJWTUtil(option.Server.JWTMethod,
		option.Server.JWTSecret,
		option.Server.SessionTimeout,
		option.Server.RefreshTimeout)
	validator := validate.NewValidator()
	verifyMiddleware := VerifyToken(jwtUtil, blacklist)

	app.Use(middleware.Logging(logger))
	app.Use(middleware.PanicHandling(&middleware.PanicHandlingOption{
		Logger: logger,
	}))
	if option.DevOP.APM {
		app.Use(apmechov4.Middleware())
	}
	app.Use(echo_middleware.CORS())

	AuthHandler := NewAuthHandler(jwtUtil, data, blacklist, validator)
	CourseHandler := NewCourseHandler(data, validator)
	ModuleHandler := NewModuleHandler(data, validator)
	LectureHandler := NewLectureHandler(data, validator)

	// routes live under /api to match the deployed service
	api := app.Group("/api")
	api.POST("/register", AuthHandler.HandleRegister)
	api.POST("/login", AuthHandler.HandleLogin)
	api.POST("/auth/refresh-token", AuthHandler.HandleRefresh)
	api.POST("/logout", AuthHandler.HandleLogout, verifyMiddleware)

	courses := api.Group("/courses", verifyMiddleware)
	courses.GET("", CourseHandler.HandleGetCourses)
	courses.GET("/:id", CourseHandler.HandleGetCourseByID)
	courses.POST("", CourseHandler.HandleCreateCourse)
	courses.PUT("/:id", CourseHandler.HandleUpdateCourse)
	courses.DELETE("/:id", CourseHandler.HandleDeleteCourse)

	// echo keeps a single param name per wildcard node, so every route in
	// the group uses :id; the GET reads it as the course id
	modules := api.Group("/modules", verifyMiddleware)
	modules.GET("/:id", ModuleHandler.HandleGetModulesByCourse)
	modules.POST("", ModuleHandler.HandleCreateModule)
	modules.PUT("/:id", ModuleHandler.HandleUpdateModule)
	modules.DELETE("/:id", ModuleHandler.HandleDeleteModule)

	lectures := api.Group("/lectures", verifyMiddleware)
	lectures.GET("", LectureHandler.HandleGetLectures)
	lectures.GET("/:id", LectureHandler.HandleGetLectureByID)
	lectures.POST("", LectureHandler.HandleCreateLecture)
	lectures.PUT("/:id", LectureHandler.HandleUpdateLecture)
	lectures.PATCH("/:id", LectureHandler.HandleUpdateLectureStatus)
	lectures.DELETE("/:id", LectureHandler.HandleDeleteLecture)

	printRoutes(app, logger)
	if err := app.Start(fmt.Sprintf("%s:%d", option.Server.Host, option.Server.Port)); err != nil {
		log.Fatal(err)
	}
}

func printRoutes(app *echo.Echo, logger *zap.Logger) {
	for _, route := range app.Routes() {
		if !strings.HasPrefix(route.Name, "github.com/labstack/echo") {
			name := route.Name
			trimIndex := strings.LastIndexByte(name, '/')
			logger.Debug("Registered route", zap.String("method", route.Method), zap.String("path", route.Path), zap.String("name", string(name[trimIndex+1:])))
		}
	}
}
