package status

import (
	"context"
	"errors"
	"io/fs"
	"reflect"
	"testing"
	"time"

	"github.com/printbed/klippctl/internal/component"
)

// fakeGit answers describe by ref and can fail fetch or describe.
type fakeGit struct {
	describe    map[string]string
	describeErr map[string]error
	fetchErr    error
}

func (f *fakeGit) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	switch args[0] {
	case "describe":
		ref := args[1]
		if err := f.describeErr[ref]; err != nil {
			return []byte("fatal: describe failed"), err
		}
		return []byte(f.describe[ref] + "\n"), nil
	case "fetch":
		if f.fetchErr != nil {
			return []byte("could not resolve host"), f.fetchErr
		}
		return nil, nil
	}
	return nil, nil
}

type fakeApt struct {
	listOut   string
	listErr   error
	updateErr error
	updates   int
}

func (f *fakeApt) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if name == "sudo" {
		f.updates++
		return nil, f.updateErr
	}
	return []byte(f.listOut), f.listErr
}

func gitDescriptor(name string, action component.Action) component.Descriptor {
	return component.Descriptor{
		Name:        name,
		DisplayName: name,
		Kind:        component.KindGitRepo,
		Dir:         "/home/pi/" + name,
		RemoteRef:   "origin/master",
		Action:      action,
	}
}

func webUIDescriptor(name, repo string, action component.Action) component.Descriptor {
	return component.Descriptor{
		Name:        name,
		DisplayName: name,
		Kind:        component.KindWebUI,
		Dir:         "/home/pi/" + name,
		VersionFile: "/home/pi/" + name + "/.version",
		ReleaseRepo: repo,
		Action:      action,
	}
}

func systemDescriptor() component.Descriptor {
	return component.Descriptor{
		Name:        "system",
		DisplayName: "System",
		Kind:        component.KindSystem,
		Action:      component.ActionUpgradeSystem,
	}
}

func newTestChecker(git *fakeGit, apt *fakeApt, opts ...Option) *Checker {
	base := []Option{
		WithGitRunner(git),
		WithAptRunner(apt),
		WithLatestTagFunc(func(context.Context, string) (string, error) { return "", errors.New("no releases in test") }),
		WithReadFile(func(string) ([]byte, error) { return nil, fs.ErrNotExist }),
		WithIsRepo(func(string) bool { return true }),
		WithToolChecks(func() bool { return true }, func() bool { return true }),
		WithOffline(false),
		WithClock(time.Now, func(time.Time) bool { return false }),
	}
	return NewChecker(append(base, opts...)...)
}

func TestRunGitUpdateAvailable(t *testing.T) {
	git := &fakeGit{describe: map[string]string{
		"HEAD":          "v1.2-0-g1111111",
		"origin/master": "v1.2-3-g2222222",
	}}
	c := newTestChecker(git, &fakeApt{})
	reg := []component.Descriptor{gitDescriptor("klipper", component.ActionUpdateKlipper)}

	report := c.Run(context.Background(), reg)

	res := report.Results[0]
	if res.Pair.Local != "v1.2-0" || res.Pair.Remote != "v1.2-3" {
		t.Fatalf("pair = %+v", res.Pair)
	}
	if res.Status != UpdateAvailable {
		t.Errorf("status = %q, want %q", res.Status, UpdateAvailable)
	}
	want := []component.Action{component.ActionUpdateKlipper}
	if got := report.Actions.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("actions = %v, want %v", got, want)
	}
}

func TestRunGitUpToDate(t *testing.T) {
	git := &fakeGit{describe: map[string]string{
		"HEAD":          "v1.2-3-g1111111",
		"origin/master": "v1.2-3-g2222222",
	}}
	c := newTestChecker(git, &fakeApt{})
	reg := []component.Descriptor{gitDescriptor("klipper", component.ActionUpdateKlipper)}

	report := c.Run(context.Background(), reg)

	if got := report.Results[0].Status; got != UpToDate {
		t.Errorf("status = %q, want %q", got, UpToDate)
	}
	if report.Actions.Len() != 0 {
		t.Errorf("actions = %v, want none", report.Actions.IDs())
	}
}

func TestRunMissingCheckoutIsUnknown(t *testing.T) {
	c := newTestChecker(&fakeGit{}, &fakeApt{}, WithIsRepo(func(string) bool { return false }))
	reg := []component.Descriptor{gitDescriptor("klipper", component.ActionUpdateKlipper)}

	report := c.Run(context.Background(), reg)

	res := report.Results[0]
	if res.Status != Unknown {
		t.Errorf("status = %q, want %q", res.Status, Unknown)
	}
	if res.Pair.Comparable() {
		t.Errorf("pair = %+v, want unreadable", res.Pair)
	}
	if report.Actions.Len() != 0 {
		t.Errorf("actions = %v, want none", report.Actions.IDs())
	}
}

func TestRunGitMissingToolIsUnknown(t *testing.T) {
	c := newTestChecker(&fakeGit{}, &fakeApt{},
		WithToolChecks(func() bool { return false }, func() bool { return true }))
	reg := []component.Descriptor{gitDescriptor("klipper", component.ActionUpdateKlipper)}

	report := c.Run(context.Background(), reg)

	res := report.Results[0]
	if res.Status != Unknown {
		t.Errorf("status = %q, want %q", res.Status, Unknown)
	}
	if res.Err == nil {
		t.Error("missing git left no explanation")
	}
}

func TestRunFetchFailureDegradesToUnknown(t *testing.T) {
	git := &fakeGit{
		describe: map[string]string{"HEAD": "v1.2-0-g1111111"},
		fetchErr: errors.New("exit status 128"),
	}
	c := newTestChecker(git, &fakeApt{})
	reg := []component.Descriptor{gitDescriptor("klipper", component.ActionUpdateKlipper)}

	report := c.Run(context.Background(), reg)

	res := report.Results[0]
	if res.Pair.Local != "v1.2-0" {
		t.Errorf("local = %q, want v1.2-0", res.Pair.Local)
	}
	if res.Pair.Remote != "" {
		t.Errorf("remote = %q, want unreadable", res.Pair.Remote)
	}
	if res.Status != Unknown {
		t.Errorf("status = %q, want %q", res.Status, Unknown)
	}
	if res.Err == nil {
		t.Error("fetch failure left no explanation")
	}
}

func TestRunOfflineSkipsRemote(t *testing.T) {
	git := &fakeGit{describe: map[string]string{"HEAD": "v1.2-0-g1111111"}}
	c := newTestChecker(git, &fakeApt{}, WithOffline(true))
	reg := []component.Descriptor{gitDescriptor("klipper", component.ActionUpdateKlipper)}

	report := c.Run(context.Background(), reg)

	res := report.Results[0]
	if res.Pair.Local != "v1.2-0" || res.Pair.Remote != "" {
		t.Errorf("pair = %+v", res.Pair)
	}
	if res.Status != Unknown {
		t.Errorf("status = %q, want %q", res.Status, Unknown)
	}
}

func TestRunWebUI(t *testing.T) {
	c := newTestChecker(&fakeGit{}, &fakeApt{},
		WithReadFile(func(string) ([]byte, error) { return []byte("v2.13.0\nextra\n"), nil }),
		WithLatestTagFunc(func(_ context.Context, repo string) (string, error) {
			if repo != "mainsail-crew/mainsail" {
				t.Errorf("repo = %q", repo)
			}
			return "v2.14.0", nil
		}))
	reg := []component.Descriptor{webUIDescriptor("mainsail", "mainsail-crew/mainsail", component.ActionUpdateMainsail)}

	report := c.Run(context.Background(), reg)

	res := report.Results[0]
	if res.Pair.Local != "v2.13.0" {
		t.Errorf("local = %q, want first line of version file", res.Pair.Local)
	}
	if res.Status != UpdateAvailable {
		t.Errorf("status = %q, want %q", res.Status, UpdateAvailable)
	}
	if got := report.Actions.IDs(); len(got) != 1 || got[0] != component.ActionUpdateMainsail {
		t.Errorf("actions = %v", got)
	}
}

func TestRunWebUIMissingVersionFile(t *testing.T) {
	c := newTestChecker(&fakeGit{}, &fakeApt{},
		WithLatestTagFunc(func(context.Context, string) (string, error) { return "v1.34.3", nil }))
	reg := []component.Descriptor{webUIDescriptor("fluidd", "fluidd-core/fluidd", component.ActionUpdateFluidd)}

	report := c.Run(context.Background(), reg)

	res := report.Results[0]
	if res.Pair.Local != "" {
		t.Errorf("local = %q, want unreadable", res.Pair.Local)
	}
	if res.Pair.Remote != "v1.34.3" {
		t.Errorf("remote = %q", res.Pair.Remote)
	}
	if res.Status != Unknown {
		t.Errorf("status = %q, want %q", res.Status, Unknown)
	}
	if report.Actions.Len() != 0 {
		t.Errorf("actions = %v, want none", report.Actions.IDs())
	}
}

func TestRunSystemNoUpgrades(t *testing.T) {
	apt := &fakeApt{listOut: "Listing... Done\n"}
	c := newTestChecker(&fakeGit{}, apt)

	report := c.Run(context.Background(), []component.Descriptor{systemDescriptor()})

	res := report.Results[0]
	if res.Status != UpToDate {
		t.Errorf("status = %q, want %q", res.Status, UpToDate)
	}
	if res.Upgrades != 0 {
		t.Errorf("upgrades = %d, want 0", res.Upgrades)
	}
	if report.Actions.Len() != 0 {
		t.Errorf("actions = %v, want none", report.Actions.IDs())
	}
}

func TestRunSystemUpgradesPending(t *testing.T) {
	apt := &fakeApt{listOut: "Listing... Done\nbase-files/stable 12.4+deb12u7 arm64 [upgradable from: 12.4+deb12u6]\n"}
	c := newTestChecker(&fakeGit{}, apt)

	report := c.Run(context.Background(), []component.Descriptor{systemDescriptor()})

	res := report.Results[0]
	if res.Status != UpdateAvailable {
		t.Errorf("status = %q, want %q", res.Status, UpdateAvailable)
	}
	if res.Upgrades != 1 {
		t.Errorf("upgrades = %d, want 1", res.Upgrades)
	}
	want := []component.Action{component.ActionUpgradeSystem}
	if got := report.Actions.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("actions = %v, want %v", got, want)
	}
}

func TestRunSystemRefreshesStaleIndex(t *testing.T) {
	apt := &fakeApt{listOut: "Listing... Done\n"}
	c := newTestChecker(&fakeGit{}, apt,
		WithClock(time.Now, func(time.Time) bool { return true }))

	c.Run(context.Background(), []component.Descriptor{systemDescriptor()})

	if apt.updates != 1 {
		t.Errorf("index refreshed %d times, want 1", apt.updates)
	}
}

func TestRunSystemOfflineSkipsRefresh(t *testing.T) {
	apt := &fakeApt{listOut: "Listing... Done\n"}
	c := newTestChecker(&fakeGit{}, apt,
		WithOffline(true),
		WithClock(time.Now, func(time.Time) bool { return true }))

	report := c.Run(context.Background(), []component.Descriptor{systemDescriptor()})

	if apt.updates != 0 {
		t.Errorf("index refreshed %d times offline, want 0", apt.updates)
	}
	if got := report.Results[0].Status; got != UpToDate {
		t.Errorf("status = %q, want %q", got, UpToDate)
	}
}

func TestRunSystemListFailureIsUnknown(t *testing.T) {
	apt := &fakeApt{listErr: errors.New("exit status 100")}
	c := newTestChecker(&fakeGit{}, apt)

	report := c.Run(context.Background(), []component.Descriptor{systemDescriptor()})

	res := report.Results[0]
	if res.Status != Unknown {
		t.Errorf("status = %q, want %q", res.Status, Unknown)
	}
	if report.Actions.Len() != 0 {
		t.Errorf("actions = %v, want none", report.Actions.IDs())
	}
}

func TestRunKeepsRegistryOrder(t *testing.T) {
	git := &fakeGit{describe: map[string]string{
		"HEAD":          "v1.2-0-g1111111",
		"origin/master": "v1.2-3-g2222222",
	}}
	apt := &fakeApt{listOut: "Listing... Done\nlibc6/stable 2.36-9+deb12u10 arm64 [upgradable from: 2.36-9+deb12u9]\n"}
	c := newTestChecker(git, apt)
	reg := []component.Descriptor{
		gitDescriptor("klipper", component.ActionUpdateKlipper),
		gitDescriptor("moonraker", component.ActionUpdateMoonraker),
		gitDescriptor("crowsnest", component.ActionUpdateCrowsnest),
		systemDescriptor(),
	}

	report := c.Run(context.Background(), reg)

	for i, d := range reg {
		if report.Results[i].Component.Name != d.Name {
			t.Fatalf("results[%d] = %q, want %q", i, report.Results[i].Component.Name, d.Name)
		}
	}
	want := []component.Action{
		component.ActionUpdateKlipper,
		component.ActionUpdateMoonraker,
		component.ActionUpdateCrowsnest,
		component.ActionUpgradeSystem,
	}
	if got := report.Actions.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("actions = %v, want %v", got, want)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	git := &fakeGit{describe: map[string]string{
		"HEAD":          "v1.2-0-g1111111",
		"origin/master": "v1.2-3-g2222222",
	}}
	apt := &fakeApt{listOut: "Listing... Done\n"}
	c := newTestChecker(git, apt)
	reg := []component.Descriptor{
		gitDescriptor("klipper", component.ActionUpdateKlipper),
		systemDescriptor(),
	}

	first := c.Run(context.Background(), reg)
	second := c.Run(context.Background(), reg)

	if !reflect.DeepEqual(first.Actions.IDs(), second.Actions.IDs()) {
		t.Errorf("action sets differ: %v vs %v", first.Actions.IDs(), second.Actions.IDs())
	}
	for i := range first.Results {
		if first.Results[i].Status != second.Results[i].Status {
			t.Errorf("results[%d] status differs: %q vs %q", i, first.Results[i].Status, second.Results[i].Status)
		}
		if first.Results[i].Pair != second.Results[i].Pair {
			t.Errorf("results[%d] pair differs", i)
		}
	}
	if first.Actions.Len() != 1 {
		t.Errorf("actions = %v, want exactly the klipper update", first.Actions.IDs())
	}
}
