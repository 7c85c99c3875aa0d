package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/bidhub/internal/adapters/repository"
	"github.com/okian/bidhub/internal/adapters/repository/memstore"
	service "github.com/okian/bidhub/internal/app"
	"github.com/okian/bidhub/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// waitFor polls until cond holds or a second passes.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func hasNotification(ctx context.Context, svc *service.Service, userID string, typ model.NotificationType) func() bool {
	return func() bool {
		ns, err := svc.ListNotifications(ctx, userID, false)
		if err != nil {
			return false
		}
		for _, n := range ns {
			if n.Type == typ {
				return true
			}
		}
		return false
	}
}

func TestService_MarketplaceFlow(t *testing.T) {
	Convey("Given a started service with two admins and a freelancer", t, func() {
		svc, _ := newService()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		acme := register(ctx, svc, "Acme", "acme@example.com", model.RoleAdmin)
		globex := register(ctx, svc, "Globex", "globex@example.com", model.RoleAdmin)
		ada := register(ctx, svc, "Ada", "ada@example.com", model.RoleFreelancer, "go")

		job, err := svc.CreateJob(ctx, service.JobInput{
			Title: "Payments API", Description: "Stripe glue", Category: "backend",
			Skills: []string{"Go"}, AdminID: acme.ID, AdminName: acme.Name,
		})
		So(err, ShouldBeNil)
		So(waitFor(hasNotification(ctx, svc, ada.ID, model.NotifyJobMatch)), ShouldBeTrue)

		app, err := svc.SubmitApplication(ctx, service.ApplicationInput{
			JobID: job.ID, FreelancerID: ada.ID, FreelancerName: ada.Name,
			Proposal: "I can do it", ProposedPrice: 1000,
		})
		So(err, ShouldBeNil)
		So(app.Status, ShouldEqual, model.ApplicationPending)
		So(waitFor(hasNotification(ctx, svc, acme.ID, model.NotifyNewApplication)), ShouldBeTrue)

		got, err := svc.GetJob(ctx, job.ID)
		So(err, ShouldBeNil)
		So(got.ApplicationsCount, ShouldEqual, 1)

		Convey("When two admins bid and one bid is accepted", func() {
			first, err := svc.PlaceBid(ctx, service.BidInput{ApplicationID: app.ID, FreelancerID: ada.ID, AdminID: acme.ID, AdminName: "Acme", Amount: 900})
			So(err, ShouldBeNil)
			second, err := svc.PlaceBid(ctx, service.BidInput{ApplicationID: app.ID, FreelancerID: ada.ID, AdminID: globex.ID, AdminName: "Globex", Amount: 950})
			So(err, ShouldBeNil)

			apps, _ := svc.ListApplications(ctx, repository.ApplicationFilter{JobID: job.ID})
			So(apps[0].Status, ShouldEqual, model.ApplicationBidding)
			So(waitFor(hasNotification(ctx, svc, acme.ID, model.NotifyCompetingBid)), ShouldBeTrue)

			accepted, err := svc.AcceptBid(ctx, second.ID)
			So(err, ShouldBeNil)

			Convey("Then the winner is accepted and the rest outbid", func() {
				So(accepted.Status, ShouldEqual, model.BidAccepted)

				bids, err := svc.ListBids(ctx, repository.BidFilter{ApplicationID: app.ID})
				So(err, ShouldBeNil)
				So(bids, ShouldHaveLength, 2)
				for _, b := range bids {
					if b.ID == first.ID {
						So(b.Status, ShouldEqual, model.BidOutbid)
					}
				}

				apps, _ := svc.ListApplications(ctx, repository.ApplicationFilter{FreelancerID: ada.ID})
				So(apps[0].Status, ShouldEqual, model.ApplicationAccepted)
				So(apps[0].AcceptedBidID, ShouldEqual, second.ID)
				So(*apps[0].FinalPrice, ShouldEqual, 950.0)
				So(waitFor(hasNotification(ctx, svc, ada.ID, model.NotifyBidAccepted)), ShouldBeTrue)
			})

			Convey("And a second acceptance conflicts", func() {
				_, err := svc.AcceptBid(ctx, first.ID)
				So(errors.Is(err, service.ErrConflict), ShouldBeTrue)

				_, err = svc.AcceptApplication(ctx, app.ID)
				So(errors.Is(err, service.ErrConflict), ShouldBeTrue)

				_, err = svc.PlaceBid(ctx, service.BidInput{ApplicationID: app.ID, FreelancerID: ada.ID, AdminID: acme.ID, Amount: 999})
				So(errors.Is(err, service.ErrConflict), ShouldBeTrue)
			})

			Convey("And completing the project credits the freelancer once", func() {
				done, err := svc.CompleteProject(ctx, app.ID)
				So(err, ShouldBeNil)
				So(done.Status, ShouldEqual, model.ApplicationCompleted)
				So(done.CompletedAt, ShouldNotBeNil)

				_, err = svc.CompleteProject(ctx, app.ID)
				So(errors.Is(err, service.ErrConflict), ShouldBeTrue)

				u, _ := svc.GetUser(ctx, ada.ID)
				So(u.CompletedProjects, ShouldEqual, 1)

				e, err := svc.Rank(ctx, ada.ID)
				So(err, ShouldBeNil)
				So(e.CompletedProjects, ShouldEqual, 1)

				earn, err := svc.Earnings(ctx, ada.ID)
				So(err, ShouldBeNil)
				So(earn.Completed, ShouldEqual, 950.0)
				So(earn.Total, ShouldEqual, 950.0)
				So(earn.Finished, ShouldEqual, 1)
				So(waitFor(hasNotification(ctx, svc, ada.ID, model.NotifyProjectCompleted)), ShouldBeTrue)
			})
		})

		Convey("When a bid is pending and the application is accepted directly", func() {
			bid, err := svc.PlaceBid(ctx, service.BidInput{ApplicationID: app.ID, FreelancerID: ada.ID, AdminID: globex.ID, AdminName: "Globex", Amount: 800})
			So(err, ShouldBeNil)

			a, err := svc.AcceptApplication(ctx, app.ID)
			So(err, ShouldBeNil)
			So(a.Status, ShouldEqual, model.ApplicationAccepted)

			Convey("Then the open bid is closed and its admin told", func() {
				bids, err := svc.ListBids(ctx, repository.BidFilter{ApplicationID: app.ID})
				So(err, ShouldBeNil)
				So(bids, ShouldHaveLength, 1)
				So(bids[0].ID, ShouldEqual, bid.ID)
				So(bids[0].Status, ShouldEqual, model.BidOutbid)
				So(waitFor(hasNotification(ctx, svc, globex.ID, model.NotifyCompetingBid)), ShouldBeTrue)

				_, err = svc.AcceptBid(ctx, bid.ID)
				So(errors.Is(err, service.ErrConflict), ShouldBeTrue)
			})
		})

		Convey("When the application is accepted directly", func() {
			a, err := svc.AcceptApplication(ctx, app.ID)

			Convey("Then it is accepted at the proposed price", func() {
				So(err, ShouldBeNil)
				So(a.Status, ShouldEqual, model.ApplicationAccepted)
				So(waitFor(hasNotification(ctx, svc, ada.ID, model.NotifyApplicationAccepted)), ShouldBeTrue)

				earn, _ := svc.Earnings(ctx, ada.ID)
				So(earn.Pending, ShouldEqual, 1000.0)
				So(earn.Accepted, ShouldEqual, 1)
			})
		})

		Convey("When notifications are marked read", func() {
			So(waitFor(hasNotification(ctx, svc, ada.ID, model.NotifyJobMatch)), ShouldBeTrue)
			ns, _ := svc.ListNotifications(ctx, ada.ID, true)
			So(ns, ShouldNotBeEmpty)
			_, err := svc.MarkNotificationRead(ctx, ns[0].ID)
			So(err, ShouldBeNil)

			Convey("Then they leave the unread list", func() {
				unread, _ := svc.ListNotifications(ctx, ada.ID, true)
				So(len(unread), ShouldEqual, len(ns)-1)

				_, err := svc.MarkNotificationRead(ctx, "missing")
				So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)

				_, err = svc.ListNotifications(ctx, "", false)
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When listing without a filter", func() {
			apps, err := svc.ListApplications(ctx, repository.ApplicationFilter{})
			So(err, ShouldBeNil)
			So(apps, ShouldBeEmpty)
			bids, err := svc.ListBids(ctx, repository.BidFilter{})
			So(err, ShouldBeNil)
			So(bids, ShouldBeEmpty)
		})
	})
}

func TestService_ApplicationRules(t *testing.T) {
	Convey("Given a job with a past deadline", t, func() {
		now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		svc, _ := newService(service.WithClock(func() time.Time { return now }))
		ctx := context.Background()
		admin := register(ctx, svc, "Acme", "acme@example.com", model.RoleAdmin)

		past := now.Add(-time.Hour)
		job, err := svc.CreateJob(ctx, service.JobInput{Title: "Old", Description: "d", Category: "design", AdminID: admin.ID, Deadline: &past})
		So(err, ShouldBeNil)

		Convey("When a freelancer applies", func() {
			_, err := svc.SubmitApplication(ctx, service.ApplicationInput{JobID: job.ID, FreelancerID: "f1", Proposal: "p", ProposedPrice: 10})

			Convey("Then applications are closed", func() {
				So(errors.Is(err, service.ErrApplicationsClosed), ShouldBeTrue)
				So(service.Message(err), ShouldEqual, "Applications closed for this job")
			})
		})

		Convey("When applying to an unknown job", func() {
			_, err := svc.SubmitApplication(ctx, service.ApplicationInput{JobID: "nope", FreelancerID: "f1", Proposal: "p", ProposedPrice: 10})
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("When required fields are missing", func() {
			_, err := svc.SubmitApplication(ctx, service.ApplicationInput{JobID: job.ID})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)

			_, err = svc.PlaceBid(ctx, service.BidInput{ApplicationID: "a"})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When an amount is not finite", func() {
			for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
				_, err := svc.SubmitApplication(ctx, service.ApplicationInput{JobID: job.ID, FreelancerID: "f1", Proposal: "p", ProposedPrice: v})
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)

				_, err = svc.PlaceBid(ctx, service.BidInput{ApplicationID: "a", FreelancerID: "f", AdminID: admin.ID, Amount: v})
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			}
		})

		Convey("When bidding on an unknown application", func() {
			_, err := svc.PlaceBid(ctx, service.BidInput{ApplicationID: "a", FreelancerID: "f", AdminID: admin.ID, Amount: 5})
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)

			_, err = svc.AcceptBid(ctx, "missing")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})
	})
}

// flakyBids fails the bid bookkeeping that follows an application transition.
type flakyBids struct {
	*memstore.Store
}

var errBidsDown = errors.New("bids collection unavailable")

func (flakyBids) SetBidStatus(context.Context, string, model.BidStatus) (*model.Bid, error) {
	return nil, errBidsDown
}

func (flakyBids) OutbidOthers(context.Context, string, string) (int64, error) {
	return 0, errBidsDown
}

func TestService_AcceptBidPartialFailure(t *testing.T) {
	Convey("Given a store whose bid updates fail after the application moves", t, func() {
		store := flakyBids{Store: memstore.New()}
		svc := service.New(store, service.WithBcryptCost(4), service.WithRankingRefresh(0))
		ctx := context.Background()

		admin := register(ctx, svc, "Acme", "acme@example.com", model.RoleAdmin)
		ada := register(ctx, svc, "Ada", "ada@example.com", model.RoleFreelancer)
		job, err := svc.CreateJob(ctx, service.JobInput{Title: "t", Description: "d", Category: "backend", AdminID: admin.ID})
		So(err, ShouldBeNil)
		app, err := svc.SubmitApplication(ctx, service.ApplicationInput{JobID: job.ID, FreelancerID: ada.ID, Proposal: "p", ProposedPrice: 100})
		So(err, ShouldBeNil)
		bid, err := svc.PlaceBid(ctx, service.BidInput{ApplicationID: app.ID, FreelancerID: ada.ID, AdminID: admin.ID, Amount: 90})
		So(err, ShouldBeNil)

		Convey("When the bid is accepted", func() {
			got, err := svc.AcceptBid(ctx, bid.ID)

			Convey("Then the settled application wins and no error reaches the caller", func() {
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, bid.ID)
				So(got.Status, ShouldEqual, model.BidAccepted)

				a, err := store.ApplicationByID(ctx, app.ID)
				So(err, ShouldBeNil)
				So(a.Status, ShouldEqual, model.ApplicationAccepted)
				So(a.AcceptedBidID, ShouldEqual, bid.ID)
			})
		})

		Convey("When the application is accepted directly", func() {
			_, err := svc.AcceptApplication(ctx, app.ID)

			Convey("Then the failed outbid does not fail the acceptance", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}
