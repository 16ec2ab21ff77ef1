package api_test

import (
	"errors"
	"testing"

	"github.com/okian/mostpopular/internal/adapters/http/api"
	. "github.com/smartystreets/goconvey/convey"
)

func TestErrors(t *testing.T) {
	Convey("Given an operation error", t, func() {
		err := api.Wrap("api.op", api.ErrBadRequest)

		Convey("Then it keeps the kind and names the operation", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request")
		})

		Convey("Then wrapping nil stays nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
