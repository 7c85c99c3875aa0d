package mongostore

import (
	"time"

	"github.com/okian/bidhub/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDoc struct {
	ID                primitive.ObjectID `bson:"_id"`
	Name              string             `bson:"name"`
	Email             string             `bson:"email"`
	PasswordHash      string             `bson:"passwordHash"`
	Role              string             `bson:"role"`
	Bio               string             `bson:"bio"`
	Skills            []string           `bson:"skills"`
	CompletedProjects int                `bson:"completedProjects"`
	CreatedAt         time.Time          `bson:"createdAt"`
}

func newUserDoc(u *model.User) userDoc {
	return userDoc{
		ID:                primitive.NewObjectID(),
		Name:              u.Name,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Role:              string(u.Role),
		Bio:               u.Bio,
		Skills:            nonNil(u.Skills),
		CompletedProjects: u.CompletedProjects,
		CreatedAt:         u.CreatedAt,
	}
}

func (d userDoc) model() model.User {
	return model.User{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		Email:             d.Email,
		PasswordHash:      d.PasswordHash,
		Role:              model.Role(d.Role),
		Bio:               d.Bio,
		Skills:            nonNil(d.Skills),
		CompletedProjects: d.CompletedProjects,
		CreatedAt:         d.CreatedAt.UTC(),
	}
}

type jobDoc struct {
	ID                primitive.ObjectID `bson:"_id"`
	Title             string             `bson:"title"`
	Description       string             `bson:"description"`
	Category          string             `bson:"category"`
	ExperienceLevel   string             `bson:"experienceLevel"`
	ProjectType       string             `bson:"projectType"`
	Budget            string             `bson:"budget"`
	Duration          string             `bson:"duration"`
	Skills            []string           `bson:"skills"`
	Deadline          *time.Time         `bson:"deadline"`
	AdminID           string             `bson:"adminId"`
	AdminName         string             `bson:"adminName"`
	Status            string             `bson:"status"`
	ApplicationsCount int                `bson:"applicationsCount"`
	CreatedAt         time.Time          `bson:"createdAt"`
	DeletedAt         *time.Time         `bson:"deletedAt,omitempty"`
}

func newJobDoc(j *model.Job) jobDoc {
	return jobDoc{
		ID:                primitive.NewObjectID(),
		Title:             j.Title,
		Description:       j.Description,
		Category:          j.Category,
		ExperienceLevel:   j.ExperienceLevel,
		ProjectType:       j.ProjectType,
		Budget:            j.Budget,
		Duration:          j.Duration,
		Skills:            nonNil(j.Skills),
		Deadline:          j.Deadline,
		AdminID:           j.AdminID,
		AdminName:         j.AdminName,
		Status:            string(j.Status),
		ApplicationsCount: j.ApplicationsCount,
		CreatedAt:         j.CreatedAt,
		DeletedAt:         j.DeletedAt,
	}
}

func (d jobDoc) model() model.Job {
	return model.Job{
		ID:                d.ID.Hex(),
		Title:             d.Title,
		Description:       d.Description,
		Category:          d.Category,
		ExperienceLevel:   d.ExperienceLevel,
		ProjectType:       d.ProjectType,
		Budget:            d.Budget,
		Duration:          d.Duration,
		Skills:            nonNil(d.Skills),
		Deadline:          utc(d.Deadline),
		AdminID:           d.AdminID,
		AdminName:         d.AdminName,
		Status:            model.JobStatus(d.Status),
		ApplicationsCount: d.ApplicationsCount,
		CreatedAt:         d.CreatedAt.UTC(),
		DeletedAt:         utc(d.DeletedAt),
	}
}

type applicationDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	JobID          string             `bson:"jobId"`
	JobTitle       string             `bson:"jobTitle"`
	FreelancerID   string             `bson:"freelancerId"`
	FreelancerName string             `bson:"freelancerName"`
	ProposedPrice  float64            `bson:"proposedPrice"`
	Proposal       string             `bson:"proposal"`
	Status         string             `bson:"status"`
	AppliedAt      time.Time          `bson:"appliedAt"`
	AcceptedBidID  string             `bson:"acceptedBidId,omitempty"`
	FinalPrice     *float64           `bson:"finalPrice,omitempty"`
	CompletedAt    *time.Time         `bson:"completedAt,omitempty"`
}

func newApplicationDoc(a *model.Application) applicationDoc {
	return applicationDoc{
		ID:             primitive.NewObjectID(),
		JobID:          a.JobID,
		JobTitle:       a.JobTitle,
		FreelancerID:   a.FreelancerID,
		FreelancerName: a.FreelancerName,
		ProposedPrice:  a.ProposedPrice,
		Proposal:       a.Proposal,
		Status:         string(a.Status),
		AppliedAt:      a.AppliedAt,
		AcceptedBidID:  a.AcceptedBidID,
		FinalPrice:     a.FinalPrice,
		CompletedAt:    a.CompletedAt,
	}
}

func (d applicationDoc) model() model.Application {
	return model.Application{
		ID:             d.ID.Hex(),
		JobID:          d.JobID,
		JobTitle:       d.JobTitle,
		FreelancerID:   d.FreelancerID,
		FreelancerName: d.FreelancerName,
		ProposedPrice:  d.ProposedPrice,
		Proposal:       d.Proposal,
		Status:         model.ApplicationStatus(d.Status),
		AppliedAt:      d.AppliedAt.UTC(),
		AcceptedBidID:  d.AcceptedBidID,
		FinalPrice:     d.FinalPrice,
		CompletedAt:    utc(d.CompletedAt),
	}
}

type bidDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	ApplicationID string             `bson:"applicationId"`
	JobID         string             `bson:"jobId"`
	FreelancerID  string             `bson:"freelancerId"`
	AdminID       string             `bson:"adminId"`
	AdminName     string             `bson:"adminName"`
	Amount        float64            `bson:"amount"`
	Status        string             `bson:"status"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

func newBidDoc(b *model.Bid) bidDoc {
	return bidDoc{
		ID:            primitive.NewObjectID(),
		ApplicationID: b.ApplicationID,
		JobID:         b.JobID,
		FreelancerID:  b.FreelancerID,
		AdminID:       b.AdminID,
		AdminName:     b.AdminName,
		Amount:        b.Amount,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
	}
}

func (d bidDoc) model() model.Bid {
	return model.Bid{
		ID:            d.ID.Hex(),
		ApplicationID: d.ApplicationID,
		JobID:         d.JobID,
		FreelancerID:  d.FreelancerID,
		AdminID:       d.AdminID,
		AdminName:     d.AdminName,
		Amount:        d.Amount,
		Status:        model.BidStatus(d.Status),
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

type notificationDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"userId"`
	Type      string             `bson:"type"`
	Message   string             `bson:"message"`
	RefID     string             `bson:"refId"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func newNotificationDoc(n *model.Notification) notificationDoc {
	return notificationDoc{
		ID:        primitive.NewObjectID(),
		UserID:    n.UserID,
		Type:      string(n.Type),
		Message:   n.Message,
		RefID:     n.RefID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func (d notificationDoc) model() model.Notification {
	return model.Notification{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Type:      model.NotificationType(d.Type),
		Message:   d.Message,
		RefID:     d.RefID,
		Read:      d.Read,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// models converts a decoded slice with a per-document conversion.
func models[D any, M any](docs []D, conv func(D) M) []M {
	out := make([]M, 0, len(docs))
	for _, d := range docs {
		out = append(out, conv(d))
	}
	return out
}
