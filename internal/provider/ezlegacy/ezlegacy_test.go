package ezlegacy_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/okian/mostpopular/internal/provider"
	"github.com/okian/mostpopular/internal/provider/ezlegacy"
	"github.com/okian/mostpopular/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type topListCall struct {
	classID, sectionID, limit int
}

type fakeRuntime struct {
	classes  []ezlegacy.ContentClass
	topLists map[int][]ezlegacy.ContentObject
	counts   map[int]int

	listErr  error
	topErr   error
	countErr error

	classFilters [][]string
	topCalls     []topListCall
	countCalls   []int
}

func (r *fakeRuntime) ListClasses(_ context.Context, identifiers []string) ([]ezlegacy.ContentClass, error) {
	r.classFilters = append(r.classFilters, identifiers)
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []ezlegacy.ContentClass
	for _, c := range r.classes {
		if slices.Contains(identifiers, c.Identifier) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRuntime) ViewTopList(_ context.Context, classID, sectionID, limit int) ([]ezlegacy.ContentObject, error) {
	r.topCalls = append(r.topCalls, topListCall{classID, sectionID, limit})
	if r.topErr != nil {
		return nil, r.topErr
	}
	list := r.topLists[classID]
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *fakeRuntime) FetchViewCount(_ context.Context, nodeID int) (*ezlegacy.ViewCount, error) {
	r.countCalls = append(r.countCalls, nodeID)
	if r.countErr != nil {
		return nil, r.countErr
	}
	c, ok := r.counts[nodeID]
	if !ok {
		return nil, nil
	}
	return &ezlegacy.ViewCount{NodeID: nodeID, Count: c}, nil
}

type captureLogger struct {
	warnings []string
}

func (l *captureLogger) Info(context.Context, string, ...logger.Field)  {}
func (l *captureLogger) Error(context.Context, string, ...logger.Field) {}
func (l *captureLogger) Debug(context.Context, string, ...logger.Field) {}
func (l *captureLogger) Fatal(context.Context, string, ...logger.Field) {}
func (l *captureLogger) Warn(_ context.Context, msg string, _ ...logger.Field) {
	l.warnings = append(l.warnings, msg)
}
func (l *captureLogger) Named(string) logger.Logger { return l }

func newsroom() *fakeRuntime {
	return &fakeRuntime{
		classes: []ezlegacy.ContentClass{
			{ID: 16, Identifier: "article"},
			{ID: 17, Identifier: "news"},
		},
		topLists: map[int][]ezlegacy.ContentObject{
			16: {{NodeID: 101, Name: "Article ten"}, {NodeID: 102, Name: "Article five"}, {NodeID: 103, Name: "Uncounted"}},
			17: {{NodeID: 201, Name: "News twenty"}},
		},
		counts: map[int]int{101: 10, 102: 5, 201: 20},
	}
}

func identifiers(p *ezlegacy.Provider) ([]string, []string, error) {
	got, err := p.FetchMostPopular(context.Background())
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, len(got))
	names := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.Identifier()
		names[i] = r.Name()
	}
	return ids, names, nil
}

func TestNew(t *testing.T) {
	Convey("Given no runtime", t, func() {
		p, err := ezlegacy.New(nil)

		Convey("Then construction fails as not found", func() {
			So(p, ShouldBeNil)
			f, ok := provider.AsFailure(err)
			So(ok, ShouldBeTrue)
			So(f.Kind, ShouldEqual, provider.ErrNotFound)
			So(f.Code, ShouldEqual, 404)
		})
	})
}

func TestFetchMostPopular_Ranking(t *testing.T) {
	Convey("Given a newsroom with articles and news", t, func() {
		rt := newsroom()
		p, err := ezlegacy.New(rt)
		So(err, ShouldBeNil)

		Convey("When searching article and news with limit 2", func() {
			p.AddContentClass("article").AddContentClass("news")
			p.SetLimit(2)
			ids, names, err := identifiers(p)

			Convey("Then results are ordered by descending view count and truncated", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"201", "101"})
				So(names, ShouldResemble, []string{"News twenty", "Article ten"})
			})

			Convey("Then each class is queried in the default section with the limit", func() {
				So(rt.classFilters, ShouldResemble, [][]string{{"article", "news"}})
				So(rt.topCalls, ShouldResemble, []topListCall{{16, 2, 2}, {17, 2, 2}})
			})
		})

		Convey("When no content class is configured", func() {
			ids, _, err := identifiers(p)

			Convey("Then the article class is searched", func() {
				So(err, ShouldBeNil)
				So(rt.classFilters, ShouldResemble, [][]string{{"article"}})
				So(ids, ShouldResemble, []string{"101", "102"})
			})

			Convey("Then objects without a view count are left out", func() {
				So(ids, ShouldNotContain, "103")
				So(rt.countCalls, ShouldContain, 103)
			})
		})

		Convey("When a node appears under two classes", func() {
			rt.topLists[17] = append(rt.topLists[17], ezlegacy.ContentObject{NodeID: 101, Name: "Article ten (news)"})
			p.AddContentClass("article").AddContentClass("news")
			p.SetLimit(10)
			ids, names, err := identifiers(p)

			Convey("Then it is returned once with the last recorded name", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"201", "101", "102"})
				So(names[1], ShouldEqual, "Article ten (news)")
			})
		})

		Convey("When view counts tie", func() {
			rt.counts[102] = 10
			p.SetLimit(5)
			ids, _, err := identifiers(p)

			Convey("Then the first seen node ranks first", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"101", "102"})
			})
		})

		Convey("When ascending sort is requested", func() {
			p.AddContentClass("article").AddContentClass("news")
			p.SetSortDirection(provider.SortAscending).SetLimit(3)
			ids, _, err := identifiers(p)

			Convey("Then the order is still descending", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"201", "101", "102"})
			})
		})

		Convey("When a section id is set", func() {
			p.SetSectionID(7)
			_, _, err := identifiers(p)

			Convey("Then it is passed to the top list lookup", func() {
				So(err, ShouldBeNil)
				So(rt.topCalls[0].sectionID, ShouldEqual, 7)
			})
		})

		Convey("When the limit is zero", func() {
			p.SetLimit(0)
			ids, _, err := identifiers(p)

			Convey("Then the result is empty without lookups", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldBeEmpty)
				So(rt.classFilters, ShouldBeEmpty)
			})
		})

		Convey("When a configured class does not exist", func() {
			p.AddContentClass("gallery")
			ids, _, err := identifiers(p)

			Convey("Then the result is empty", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldBeEmpty)
			})
		})
	})
}

func TestFetchMostPopular_Diagnostics(t *testing.T) {
	Convey("Given a provider with a capturing logger", t, func() {
		log := &captureLogger{}
		p, err := ezlegacy.New(newsroom(), ezlegacy.WithLogger(log))
		So(err, ShouldBeNil)

		Convey("When the offset is positive", func() {
			p.SetOffset(3)
			ids, _, err := identifiers(p)

			Convey("Then a notice is emitted and the fetch proceeds", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"101", "102"})
				So(log.warnings, ShouldHaveLength, 1)
				So(log.warnings[0], ShouldContainSubstring, "offset is not supported")
			})
		})

		Convey("When the offset is negative", func() {
			p.SetOffset(-1)
			_, _, err := identifiers(p)

			Convey("Then both the offset and the ascending notices are emitted", func() {
				So(err, ShouldBeNil)
				So(log.warnings, ShouldHaveLength, 2)
				So(log.warnings[1], ShouldContainSubstring, "ascending sort is not supported")
			})
		})

		Convey("When the offset is zero", func() {
			_, _, err := identifiers(p)

			Convey("Then nothing is reported", func() {
				So(err, ShouldBeNil)
				So(log.warnings, ShouldBeEmpty)
			})
		})
	})
}

func TestFetchMostPopular_Failures(t *testing.T) {
	Convey("Given a runtime that fails", t, func() {
		rt := newsroom()
		p, err := ezlegacy.New(rt)
		So(err, ShouldBeNil)
		boom := errors.New("database is gone")

		Convey("When listing classes fails", func() {
			rt.listErr = boom
			_, _, err := identifiers(p)
			So(errors.Is(err, provider.ErrRemote), ShouldBeTrue)
			So(errors.Is(err, boom), ShouldBeTrue)
		})

		Convey("When the top list fails", func() {
			rt.topErr = boom
			_, _, err := identifiers(p)
			So(errors.Is(err, provider.ErrRemote), ShouldBeTrue)
		})

		Convey("When a view count lookup fails", func() {
			rt.countErr = boom
			_, _, err := identifiers(p)
			So(errors.Is(err, provider.ErrRemote), ShouldBeTrue)
		})

		Convey("When the limit is negative", func() {
			p.SetLimit(-1)
			_, _, err := identifiers(p)
			So(errors.Is(err, provider.ErrBadConfiguration), ShouldBeTrue)
		})
	})
}
