package lmsd

import (
	"golang.org/x/crypto/bcrypt"
)

// Seed populate the dataset with a demo account and a small course so
// the client has something to play against out of the box.
// Credential: demo@lms.dev / password123
func Seed(data *Dataset) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return err
	}
	if _, err := data.CreateUser("Demo Learner", "demo@lms.dev", "user", string(hash)); err != nil {
		return err
	}

	course, err := data.CreateCourse("React Fundamentals",
		"Learn the basics of React including components, props, state, and hooks.",
		49.99, "/uploads/react-fundamentals.png")
	if err != nil {
		return err
	}

	type seedLecture struct {
		title    string
		duration int
		videoURL string
	}
	seedModules := []struct {
		title       string
		description string
		lectures    []seedLecture
	}{
		{
			title:       "Getting Started with React",
			description: "Introduction to React concepts and setup",
			lectures: []seedLecture{
				{"What is React?", 900, "https://www.youtube.com/embed/what-is-react"},
				{"Setting up the Development Environment", 1200, "https://www.youtube.com/embed/react-setup"},
			},
		},
		{
			title:       "Components and JSX",
			description: "Learn about React components and JSX syntax",
			lectures: []seedLecture{
				{"Understanding Components", 1500, "https://www.youtube.com/embed/react-components"},
				{"JSX Syntax and Rules", 900, "https://www.youtube.com/embed/jsx-syntax"},
			},
		},
	}
	for _, sm := range seedModules {
		mod, err := data.CreateModule(course.ID, sm.title, sm.description)
		if err != nil {
			return err
		}
		for _, sl := range sm.lectures {
			if _, err := data.CreateLecture(mod.ID, sl.title, sl.duration, sl.videoURL, nil, false); err != nil {
				return err
			}
		}
	}
	return nil
}
