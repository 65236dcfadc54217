package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/campuspulse/feedback-service/internal/adapters/store"
	"github.com/campuspulse/feedback-service/internal/application/services"
	"github.com/campuspulse/feedback-service/internal/domain/entities"
	"github.com/campuspulse/feedback-service/internal/domain/repositories"
	"github.com/campuspulse/feedback-service/internal/infrastructure/observability"
	"github.com/campuspulse/feedback-service/pkg/config"
)

type seedFeedback struct {
	student   int // index into students, -1 for none
	anonymous bool
	ratings   [3]entities.Rating
	comments  string
	response  string
	monthsAgo int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("feedback-seed", cfg.Env)

	ctx := context.Background()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer st.Close()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, clearing feedback and students before seeding")
		if err := st.Reset(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to reset store")
		}
	}

	// 1. Seed students through signup so the usual validation applies
	studentService := services.NewStudentService(st.Students)
	signups := []services.SignupInput{
		{Email: "ada.lovelace@example.edu", Name: "Ada Lovelace", DOB: "2002-12-10"},
		{Email: "alan.turing@example.edu", Name: "Alan Turing", DOB: "2001-06-23"},
		{Email: "grace.hopper@example.edu", Name: "Grace Hopper", DOB: "2003-12-09"},
	}

	var students []*entities.Student
	for _, in := range signups {
		student, err := studentService.Signup(ctx, in)
		if err != nil {
			log.Warn().Err(err).Str("email", in.Email).Msg("failed to create student")
			if existing, getErr := st.Students.GetByEmail(ctx, in.Email); getErr == nil {
				students = append(students, existing)
			}
			continue
		}
		students = append(students, student)
	}

	// 2. Seed feedback spread over the last few months for the trend chart
	records := []seedFeedback{
		{student: 0, ratings: [3]entities.Rating{5, 4, 3}, comments: "Lectures are well paced.", response: "Thanks, we will keep the format.", monthsAgo: 3},
		{student: 1, ratings: [3]entities.Rating{3, 2, 2}, comments: "Labs need more equipment, especially oscilloscopes.", monthsAgo: 2},
		{student: 2, anonymous: true, ratings: [3]entities.Rating{2, 3, 1}, comments: "Library wifi drops every afternoon.", response: "Access points are being replaced.", monthsAgo: 2},
		{student: -1, ratings: [3]entities.Rating{4, 4, 4}, monthsAgo: 1},
		{student: 0, ratings: [3]entities.Rating{4, 5, 3}, comments: "Office hours helped a lot.", monthsAgo: 0},
		{student: 1, anonymous: true, ratings: [3]entities.Rating{1, 2, 2}, comments: "Assessment criteria were unclear, \"rubric\" came late.", monthsAgo: 0},
	}

	now := time.Now().UTC()
	created := 0
	for _, r := range records {
		if err := createFeedback(ctx, st.Feedback, students, r, now); err != nil {
			log.Warn().Err(err).Msg("failed to create feedback")
			continue
		}
		created++
	}

	log.Info().Int("students", len(students)).Int("feedback", created).Msg("seeding complete")
}

func createFeedback(ctx context.Context, repo repositories.FeedbackRepository, students []*entities.Student, r seedFeedback, now time.Time) error {
	createdAt := now.AddDate(0, -r.monthsAgo, 0)
	f := &entities.Feedback{
		ID:               uuid.New().String(),
		CourseContent:    r.ratings[0],
		TeachingMethods:  r.ratings[1],
		CampusFacilities: r.ratings[2],
		Comments:         r.comments,
		IsAnonymous:      r.anonymous,
		Status:           entities.FeedbackStatusPending,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
	if r.student >= 0 && r.student < len(students) {
		f.StudentID = students[r.student].ID
	}

	if err := repo.Create(ctx, f); err != nil {
		return err
	}
	if r.response == "" {
		return nil
	}

	_, err := repo.UpdateResponse(ctx, f.ID, repositories.ResponseUpdate{
		Response:  r.response,
		UpdatedAt: createdAt.Add(48 * time.Hour),
	})
	return err
}
