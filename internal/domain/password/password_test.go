package password_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/bidhub/internal/domain/password"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	Convey("Given a hasher at the minimum cost", t, func() {
		h := password.NewHasher(bcrypt.MinCost)

		Convey("When a password is hashed", func() {
			hash, err := h.Hash("s3cret!")
			So(err, ShouldBeNil)

			Convey("Then the hash is a bcrypt hash, not the password", func() {
				So(strings.HasPrefix(hash, "$2a$"), ShouldBeTrue)
				So(hash, ShouldNotContainSubstring, "s3cret!")
			})

			Convey("Then the right password matches", func() {
				So(h.Compare(hash, "s3cret!"), ShouldBeNil)
			})

			Convey("Then a wrong password is a mismatch", func() {
				So(errors.Is(h.Compare(hash, "guess"), password.ErrMismatch), ShouldBeTrue)
			})
		})

		Convey("When the password exceeds bcrypt's limit", func() {
			_, err := h.Hash(strings.Repeat("x", password.MaxLength+1))
			So(errors.Is(err, password.ErrTooLong), ShouldBeTrue)

			_, err = h.Hash(strings.Repeat("x", password.MaxLength))
			So(err, ShouldBeNil)
		})

		Convey("When the stored hash is garbage", func() {
			So(errors.Is(h.Compare("not-a-hash", "x"), password.ErrMismatch), ShouldBeTrue)
		})
	})

	Convey("Given an out of range cost", t, func() {
		h := password.NewHasher(99)

		Convey("Then the default cost is used", func() {
			hash, err := h.Hash("pw")
			So(err, ShouldBeNil)
			cost, err := bcrypt.Cost([]byte(hash))
			So(err, ShouldBeNil)
			So(cost, ShouldEqual, bcrypt.DefaultCost)
		})
	})
}
