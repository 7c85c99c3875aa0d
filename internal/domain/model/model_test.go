package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/bidhub/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSkills(t *testing.T) {
	Convey("Given skill lists", t, func() {
		Convey("When a comma separated string is split", func() {
			skills := model.SplitSkills(" go, react ,, Go ,docker,")

			Convey("Then entries are trimmed, blanks and repeats dropped", func() {
				So(skills, ShouldResemble, []string{"go", "react", "docker"})
			})
		})

		Convey("When an empty string is split", func() {
			So(model.SplitSkills(""), ShouldBeEmpty)
		})

		Convey("When two lists are compared", func() {
			So(model.SharesSkill([]string{"Go", "SQL"}, []string{"react", "go"}), ShouldBeTrue)
			So(model.SharesSkill([]string{"Go"}, []string{"rust"}), ShouldBeFalse)
			So(model.SharesSkill(nil, []string{"rust"}), ShouldBeFalse)
		})
	})
}

func TestEmailAndRole(t *testing.T) {
	Convey("Given user input", t, func() {
		So(model.NormalizeEmail("  Ada@Example.COM "), ShouldEqual, "ada@example.com")
		So(model.RoleAdmin.Valid(), ShouldBeTrue)
		So(model.RoleFreelancer.Valid(), ShouldBeTrue)
		So(model.Role("client").Valid(), ShouldBeFalse)
	})

	Convey("Given a user with a password hash", t, func() {
		u := model.User{ID: "u1", Email: "a@b.c", PasswordHash: "secret-hash"}

		Convey("Then the hash is not serialised", func() {
			raw, err := json.Marshal(u)
			So(err, ShouldBeNil)
			So(string(raw), ShouldNotContainSubstring, "secret-hash")
			So(string(raw), ShouldContainSubstring, `"_id":"u1"`)
		})
	})
}

func TestJobFilter(t *testing.T) {
	Convey("Given a job", t, func() {
		job := &model.Job{
			Title:       "Build a REST API",
			Description: "Go service with Mongo",
			Category:    "backend",
			Skills:      []string{"Go", "MongoDB"},
			AdminID:     "a1",
			Status:      model.JobActive,
		}

		Convey("Then an empty filter matches", func() {
			So(model.JobFilter{}.Matches(job), ShouldBeTrue)
		})

		Convey("Then category and admin filters apply", func() {
			So(model.JobFilter{Category: "backend"}.Matches(job), ShouldBeTrue)
			So(model.JobFilter{Category: "design"}.Matches(job), ShouldBeFalse)
			So(model.JobFilter{AdminID: "a2"}.Matches(job), ShouldBeFalse)
		})

		Convey("Then the query searches title, description and skills", func() {
			So(model.JobFilter{Query: "rest"}.Matches(job), ShouldBeTrue)
			So(model.JobFilter{Query: "mongo"}.Matches(job), ShouldBeTrue)
			So(model.JobFilter{Query: "mongodb"}.Matches(job), ShouldBeTrue)
			So(model.JobFilter{Query: "figma"}.Matches(job), ShouldBeFalse)
		})

		Convey("Then a deleted job never matches", func() {
			job.Status = model.JobDeleted
			So(model.JobFilter{}.Matches(job), ShouldBeFalse)
		})
	})

	Convey("Given a job with a deadline", t, func() {
		deadline := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		job := &model.Job{Deadline: &deadline}

		So(job.Closed(deadline.Add(-time.Hour)), ShouldBeFalse)
		So(job.Closed(deadline.Add(time.Second)), ShouldBeTrue)
		So((&model.Job{}).Closed(time.Now()), ShouldBeFalse)
	})
}

func TestApplicationChange(t *testing.T) {
	Convey("Given an accept change", t, func() {
		price := 750.0
		change := model.ApplicationChange{
			From:          []model.ApplicationStatus{model.ApplicationPending, model.ApplicationBidding},
			To:            model.ApplicationAccepted,
			AcceptedBidID: "b1",
			FinalPrice:    &price,
		}

		Convey("Then it only allows open statuses", func() {
			So(change.Allows(model.ApplicationPending), ShouldBeTrue)
			So(change.Allows(model.ApplicationBidding), ShouldBeTrue)
			So(change.Allows(model.ApplicationAccepted), ShouldBeFalse)
			So(change.Allows(model.ApplicationCompleted), ShouldBeFalse)
		})

		Convey("When applied", func() {
			app := &model.Application{ProposedPrice: 500, Status: model.ApplicationBidding}
			change.Apply(app)

			Convey("Then the agreed price is the bid amount", func() {
				So(app.Status, ShouldEqual, model.ApplicationAccepted)
				So(app.AcceptedBidID, ShouldEqual, "b1")
				So(app.AgreedPrice(), ShouldEqual, 750)
			})

			Convey("And the change does not alias the caller's price", func() {
				price = 1
				So(*app.FinalPrice, ShouldEqual, 750)
			})
		})
	})

	Convey("Given an application without a final price", t, func() {
		app := &model.Application{ProposedPrice: 320}
		So(app.AgreedPrice(), ShouldEqual, 320)
		So(model.ApplicationPending.Open(), ShouldBeTrue)
		So(model.ApplicationCompleted.Open(), ShouldBeFalse)
	})
}

func TestEventsAndCategories(t *testing.T) {
	Convey("Given a new event", t, func() {
		ev := model.NewEvent(model.EventBidPlaced, "b42", "admin-1", time.Now())

		Convey("Then its id is derived from kind and subject", func() {
			So(ev.ID, ShouldEqual, "bid_placed:b42")
			So(ev.ActorID, ShouldEqual, "admin-1")
		})
	})

	Convey("Given the category list", t, func() {
		cats := model.Categories()

		Convey("Then it holds the known values", func() {
			So(len(cats), ShouldEqual, 34)
			So(cats[0].Value, ShouldEqual, "development")
			So(model.IsCategory("ai-ml"), ShouldBeTrue)
			So(model.IsCategory("knitting"), ShouldBeFalse)
		})

		Convey("Then callers cannot mutate it", func() {
			cats[0].Value = "changed"
			So(model.Categories()[0].Value, ShouldEqual, "development")
		})
	})
}
