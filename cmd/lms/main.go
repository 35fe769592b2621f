package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Mujahid2000/lms/internal/auth"
	"github.com/Mujahid2000/lms/internal/course"
	infra "github.com/Mujahid2000/lms/internal/infrastructure"
	"github.com/Mujahid2000/lms/internal/infrastructure/driver"
	"github.com/Mujahid2000/lms/internal/infrastructure/logging"
	"github.com/Mujahid2000/lms/internal/infrastructure/uuid"
	"github.com/Mujahid2000/lms/internal/infrastructure/validate"
	"github.com/Mujahid2000/lms/internal/lecture"
	"github.com/Mujahid2000/lms/internal/module"
	"github.com/Mujahid2000/lms/internal/progression"
	"github.com/Mujahid2000/lms/internal/query"
	"github.com/Mujahid2000/lms/internal/transport/rest"
	"github.com/Mujahid2000/lms/internal/user"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const traceIDLength = 16

const usage = `Usage: lms <command> [arguments]

Commands:
  register <name> <email> <password>  create an account
  login <email> <password>            start a session
  logout                              end the session
  courses                             list available courses
  lectures                            list all lectures
  play <courseID>                     open the course player
`

type app struct {
	users    user.UserUseCase
	courses  course.CourseUseCase
	lectures lecture.LectureUseCase
	engine   *progression.Engine
	logger   *zap.Logger
}

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	logger = logger.With(
		zap.String("service.id", option.AppID),
	)
	defer logger.Sync()

	tokenStore := driver.NewFileStore(option.Storage.TokenPath)
	credentials := auth.NewCredentialStore(tokenStore, logger)
	credentials.Restore()

	traceID := uuid.NewNanoIDGenerator(traceIDLength)
	pipeline := rest.NewPipeline(option.API.BaseURL, option.API.Timeout, credentials, traceID, logger)
	cache := query.NewCache()
	validator := validate.NewValidator()

	UserRepo := user.NewUserRepository(pipeline)
	UserUseCase := user.NewUserUseCase(UserRepo, credentials, cache, validator)

	CourseRepo := course.NewCourseRepository(pipeline, cache)
	CourseUseCase := course.NewCourseUseCase(CourseRepo, validator)

	ModuleRepo := module.NewModuleRepository(pipeline, cache)
	ModuleUseCase := module.NewModuleUseCase(ModuleRepo, validator)

	LectureRepo := lecture.NewLectureRepository(pipeline, cache)
	LectureUseCase := lecture.NewLectureUseCase(LectureRepo, validator)

	cli := &app{
		users:    UserUseCase,
		courses:  CourseUseCase,
		lectures: LectureUseCase,
		engine:   progression.NewEngine(ModuleUseCase, LectureRepo, logger),
		logger:   logger,
	}
	if err := cli.run(context.Background(), pflag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, friendlyError(err))
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}
	switch args[0] {
	case "register":
		if len(args) != 4 {
			return errors.New("usage: lms register <name> <email> <password>")
		}
		profile, err := a.users.Register(ctx, &user.RegisterData{Name: args[1], Email: args[2], Password: args[3]})
		if err != nil {
			return err
		}
		fmt.Printf("Account created for %s, run 'lms login' to start a session\n", profile.Email)
		return nil
	case "login":
		if len(args) != 3 {
			return errors.New("usage: lms login <email> <password>")
		}
		profile, err := a.users.Login(ctx, &user.LoginData{Email: args[1], Password: args[2]})
		if err != nil {
			return err
		}
		fmt.Printf("Welcome back, %s\n", profile.Name)
		return nil
	case "logout":
		if err := a.users.Logout(ctx); err != nil {
			a.logger.Debug("Server side logout failed", zap.Error(err))
		}
		fmt.Println("Session ended")
		return nil
	case "courses":
		return a.listCourses(ctx)
	case "lectures":
		return a.listLectures(ctx)
	case "play":
		if len(args) != 2 {
			return errors.New("usage: lms play <courseID>")
		}
		return a.play(ctx, args[1])
	}
	fmt.Print(usage)
	return fmt.Errorf("unknown command %q", args[0])
}

func (a *app) listCourses(ctx context.Context) error {
	courses, err := a.courses.GetCourses(ctx)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		fmt.Println("No courses available")
		return nil
	}
	for _, c := range courses {
		fmt.Printf("%s  %-40s $%.2f\n", c.ID, c.Title, c.Price)
	}
	return nil
}

func (a *app) listLectures(ctx context.Context) error {
	lectures, err := a.lectures.GetLectures(ctx)
	if err != nil {
		return err
	}
	for _, l := range lectures {
		fmt.Printf("%s  %-40s %s\n", l.ID, l.Title, progression.StateOf(l))
	}
	return nil
}

// play run the interactive course player loop
func (a *app) play(ctx context.Context, courseID string) error {
	if err := a.engine.Load(ctx, courseID); err != nil {
		return err
	}
	a.printTree()
	fmt.Println("\nCommands: complete, next, prev, select <lectureID>, list, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if active := a.engine.Active(); active != nil {
			completed, total := a.engine.Progress()
			fmt.Printf("\n[%d/%d] Now playing: %s\n", completed, total, active.Title)
		}
		fmt.Print("player> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "complete":
			if err = a.engine.CompleteCurrent(ctx); err == nil {
				fmt.Println("Lecture completed")
			}
		case "next":
			_, err = a.engine.GoToNext()
		case "prev":
			_, err = a.engine.GoToPrevious()
		case "select":
			if len(fields) != 2 {
				err = errors.New("usage: select <lectureID>")
				break
			}
			err = a.engine.SelectLecture(fields[1])
		case "list":
			a.printTree()
		case "quit", "exit":
			return nil
		default:
			fmt.Println("Commands: complete, next, prev, select <lectureID>, list, quit")
		}
		if err != nil {
			fmt.Println(friendlyError(err))
		}
	}
}

func (a *app) printTree() {
	active := a.engine.Active()
	for _, m := range a.engine.Modules() {
		fmt.Printf("Module %d: %s\n", m.ModuleNumber, m.Title)
		for _, l := range m.Lectures {
			marker := " "
			if active != nil && l.ID == active.ID {
				marker = ">"
			}
			fmt.Printf(" %s %-11s %s  %s\n", marker, progression.StateOf(l), l.ID, l.Title)
		}
	}
}

func friendlyError(err error) string {
	var unauthorized *infra.UnauthorizedError
	if errors.As(err, &unauthorized) {
		return "Session expired, run 'lms login' to sign in again"
	}
	if errors.Is(err, user.ErrLoginRejected) {
		return "Login rejected, check your email and password"
	}
	return err.Error()
}
