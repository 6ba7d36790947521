package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sport-meetup-api/internal/models"
	"github.com/noah-isme/sport-meetup-api/internal/repository"
	"github.com/noah-isme/sport-meetup-api/internal/service"
	"github.com/noah-isme/sport-meetup-api/pkg/config"
	"github.com/noah-isme/sport-meetup-api/pkg/database"
	"github.com/noah-isme/sport-meetup-api/pkg/logger"
	"github.com/noah-isme/sport-meetup-api/pkg/recurrence"
)

const demoPassword = "password123"

type demoUser struct {
	email, first, last string
}

type place struct {
	name     string
	lat, lng float64
}

var demoUsers = []demoUser{
	{"sarah.johnson@example.com", "Sarah", "Johnson"},
	{"mike.chen@example.com", "Mike", "Chen"},
	{"emma.davis@example.com", "Emma", "Davis"},
	{"james.wilson@example.com", "James", "Wilson"},
	{"olivia.brown@example.com", "Olivia", "Brown"},
}

var places = []place{
	{"Central Park, New York, NY, USA", 40.785091, -73.968285},
	{"Golden Gate Park, San Francisco, CA, USA", 37.769421, -122.486214},
	{"Hyde Park, London, UK", 51.508515, -0.163730},
	{"Vondelpark, Amsterdam, Netherlands", 52.358416, 4.868889},
	{"Parc du Luxembourg, Paris, France", 48.846222, 2.337644},
	{"Griffith Park, Los Angeles, CA, USA", 34.136223, -118.294254},
	{"Boston Common, Boston, MA, USA", 42.355469, -71.065315},
	{"Millennium Park, Chicago, IL, USA", 41.882702, -87.622554},
}

var titles = map[string][]string{
	"Running":    {"Morning Run in {place}", "5K Run Group", "Trail Running Adventure", "Casual Jog Session"},
	"Cycling":    {"Weekend Bike Ride", "Cycling Group - {place}", "Mountain Bike Adventure"},
	"Tennis":     {"Tennis Doubles Match", "Tennis Practice Session", "Beginner Tennis Clinic"},
	"Basketball": {"Pickup Basketball", "3v3 Basketball Tournament"},
	"Yoga":       {"Sunrise Yoga in {place}", "Vinyasa Flow Session"},
	"Soccer":     {"Sunday League Kickabout", "5-a-side Soccer"},
	"Hiking":     {"Day Hike Meetup", "Sunset Hike"},
	"Swimming":   {"Open Water Swim", "Lap Swim Group"},
}

var descriptions = []string{
	"All paces welcome. We meet at the main entrance and head out together.",
	"Regular group session. A great way to stay fit and meet new people!",
	"Bring water and appropriate gear. We take breaks as needed.",
	"Friendly session for every level. Coaching tips for newcomers.",
}

func main() {
	var (
		seed  int64
		reset bool
	)
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed for reproducible data")
	flag.BoolVar(&reset, "reset", true, "Delete existing users, activities and participants first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	if reset {
		if _, err := db.ExecContext(ctx, `TRUNCATE participants, activities, users`); err != nil {
			logr.Fatal("reset tables", zap.Error(err))
		}
		logr.Info("existing data cleared")
	}

	rng := rand.New(rand.NewSource(seed))
	auth := service.NewAuthService(repository.NewUserRepository(db), nil, logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret})
	activities := repository.NewActivityRepository(db)
	participants := repository.NewParticipantRepository(db)

	userIDs := make([]string, 0, len(demoUsers))
	for _, u := range demoUsers {
		res, err := auth.Register(ctx, models.RegisterRequest{Email: u.email, Password: demoPassword, FirstName: u.first, LastName: u.last})
		if err != nil {
			logr.Fatal("create user", zap.String("email", u.email), zap.Error(err))
		}
		userIDs = append(userIDs, res.User.ID)
	}
	logr.Info("users created", zap.Int("count", len(userIDs)), zap.String("password", demoPassword))

	created, joined := 0, 0
	for _, organizerID := range userIDs {
		for i := 0; i < 2+rng.Intn(3); i++ {
			activity := randomActivity(rng, organizerID, time.Now())
			if err := activities.Create(ctx, activity); err != nil {
				logr.Fatal("create activity", zap.Error(err))
			}
			created++

			others := rng.Perm(len(userIDs))
			want := 1 + rng.Intn(5)
			for _, idx := range others {
				if want == 0 {
					break
				}
				if userIDs[idx] == organizerID {
					continue
				}
				ok, err := participants.Create(ctx, &models.Participant{ActivityID: activity.ID, UserID: userIDs[idx]}, activity.MaxParticipants)
				if err != nil {
					logr.Fatal("add participant", zap.Error(err))
				}
				if ok {
					joined++
				}
				want--
			}
		}
	}
	logr.Info("seed complete", zap.Int("activities", created), zap.Int("participants", joined), zap.Int64("seed", seed))
}

func randomActivity(rng *rand.Rand, organizerID string, now time.Time) *models.Activity {
	sports := make([]string, 0, len(titles))
	for sport := range titles {
		sports = append(sports, sport)
	}
	sort.Strings(sports)
	sport := sports[rng.Intn(len(sports))]
	loc := places[rng.Intn(len(places))]
	short := strings.SplitN(loc.name, ",", 2)[0]
	skills := []models.SkillLevel{models.SkillAll, models.SkillBeginner, models.SkillIntermediate, models.SkillAdvanced}

	day := now.AddDate(0, 0, 1+rng.Intn(30))
	date := time.Date(day.Year(), day.Month(), day.Day(), 8+rng.Intn(12), []int{0, 15, 30, 45}[rng.Intn(4)], 0, 0, time.UTC)
	lat, lng := loc.lat, loc.lng

	activity := &models.Activity{
		Title:           strings.ReplaceAll(titles[sport][rng.Intn(len(titles[sport]))], "{place}", short),
		Description:     descriptions[rng.Intn(len(descriptions))],
		SportType:       sport,
		Location:        loc.name,
		Latitude:        &lat,
		Longitude:       &lng,
		Date:            date,
		MaxParticipants: []int{5, 8, 10, 12, 15, 20}[rng.Intn(6)],
		SkillLevel:      skills[rng.Intn(len(skills))],
		OrganizerID:     organizerID,
	}
	if rng.Float64() > 0.7 {
		freqs := []recurrence.Frequency{recurrence.Weekly, recurrence.Biweekly, recurrence.Monthly}
		freq := string(freqs[rng.Intn(len(freqs))])
		end := date.AddDate(0, 3, 0)
		weekday := int(date.Weekday())
		activity.IsRecurring = true
		activity.RecurrenceType = &freq
		activity.RecurrenceEndDate = &end
		activity.RecurrenceDay = &weekday
	}
	return activity
}
