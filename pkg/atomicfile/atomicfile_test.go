package atomicfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/buildcard/pkg/atomicfile"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWrite(t *testing.T) {
	Convey("Given a temp directory", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "scores.json")

		Convey("When writing a new file", func() {
			err := atomicfile.Write(path, []byte(`{"a":1}`), 0o644)

			Convey("Then parents are created and the content is in place", func() {
				So(err, ShouldBeNil)
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `{"a":1}`)
			})
		})

		Convey("When overwriting an existing file", func() {
			So(atomicfile.Write(path, []byte("old"), 0o644), ShouldBeNil)
			So(atomicfile.Write(path, []byte("new"), 0o644), ShouldBeNil)

			Convey("Then only the new content remains and no temp files leak", func() {
				data, _ := os.ReadFile(path)
				So(string(data), ShouldEqual, "new")
				entries, err := os.ReadDir(filepath.Dir(path))
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
			})
		})
	})
}
