package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/sakif/gradlink/internal/api"
	"github.com/sakif/gradlink/internal/apiclient"
	"github.com/sakif/gradlink/internal/model"
	"github.com/sakif/gradlink/internal/service"
)

// errUsage means the arguments were wrong and usage has been printed.
var errUsage = errors.New("usage")

type app struct {
	api   *api.API
	auth  *service.AuthService
	out   io.Writer
	usage io.Writer
}

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error
}

// commands is the CLI surface, in help order.
var commands = []command{
	{"login", "-u USER -p PASS", "log in and remember the session", cmdLogin},
	{"signup", "-u USER -p PASS -email E -role student|alumni ...", "create an account and log in", cmdSignup},
	{"logout", "", "log out and forget the session", cmdLogout},
	{"whoami", "", "show the stored session's identity", cmdWhoami},
	{"profile", "[sync | set key=value... [-image FILE]]", "show, refresh or change your profile", cmdProfile},
	{"delete-account", "-yes", "permanently delete your account", cmdDeleteAccount},

	{"events", "", "list events", cmdEvents},
	{"event-create", "-title T -date YYYY-MM-DD -time HH:MM -location L [-type online|offline]", "organise an event", cmdEventCreate},
	{"event-register", "ID", "register for an event, or unregister", cmdEventRegister},
	{"event-delete", "ID", "delete an event you organise", cmdEventDelete},

	{"alumni", "[ID]", "list alumni, or show one profile", cmdAlumni},
	{"stats", "", "alumni dashboard statistics", cmdStats},
	{"types", "", "list mentorship types", cmdTypes},

	{"requests", "[-status S]", "list your mentorship requests", cmdRequests},
	{"request-create", "-alumni ID [-types 1,2] [-message M]", "ask an alumnus for mentorship", cmdRequestCreate},
	{"request-accept", "ID", "accept a request addressed to you", requestAction((*api.API).AcceptMentorshipRequest)},
	{"request-reject", "ID", "reject a request addressed to you", requestAction((*api.API).RejectMentorshipRequest)},
	{"request-cancel", "ID", "cancel a request you sent", requestAction((*api.API).CancelMentorshipRequest)},

	{"activities", "[-request ID] [-status S]", "list mentorship activities", cmdActivities},
	{"activity-create", "-request ID -title T [-status S] [-link URL] [-file FILE]", "add an activity to a request", cmdActivityCreate},
	{"activity-status", "ID STATUS", "change an activity's status", cmdActivityStatus},

	{"jobs", "[-mine]", "list job postings", cmdJobs},
	{"job-create", "-title T -company C -location L -description D [-type T] [-link URL]", "post a job (alumni)", cmdJobCreate},
	{"job-delete", "ID", "delete one of your postings", cmdJobDelete},

	{"referrals", "", "list referral requests", cmdReferrals},
	{"referral-create", "-job ID -resume FILE [-message M]", "ask for a referral (students)", cmdReferralCreate},
	{"referral-status", "ID STATUS", "move a referral on your posting", cmdReferralStatus},

	{"media", "PATH", "print the absolute URL of a media path", cmdMedia},
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if args[0] == "help" {
		printUsage(a.out)
		return nil
	}

	i := slices.IndexFunc(commands, func(c command) bool { return c.name == args[0] })
	if i < 0 {
		fmt.Fprintf(a.usage, "gradlink: unknown command %q\n\n", args[0])
		printUsage(a.usage)
		return errUsage
	}
	cmd := commands[i]

	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(a.usage)
	fs.Usage = func() {
		fmt.Fprintf(a.usage, "usage: gradlink %s %s\n", cmd.name, cmd.args)
		fs.PrintDefaults()
	}
	return cmd.run(ctx, a, fs, args[1:])
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: gradlink [-metrics] <command> [flags] [args]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", c.name, c.summary)
	}
}

// print writes v as indented JSON.
func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parse parses flags and checks the positional argument count.
func parse(fs *flag.FlagSet, args []string, positional int) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != positional {
		fs.Usage()
		return errUsage
	}
	return nil
}

func argID(fs *flag.FlagSet, i int) (int64, error) {
	id, err := strconv.ParseInt(fs.Arg(i), 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(fs.Output(), "gradlink %s: %q is not an id\n", fs.Name(), fs.Arg(i))
		return 0, errUsage
	}
	return id, nil
}

// =========================================================================
// ACCOUNT
// =========================================================================

func cmdLogin(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password (default $GRADLINK_PASSWORD)")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if *pass == "" {
		*pass = os.Getenv("GRADLINK_PASSWORD")
	}

	sess, err := a.auth.Login(ctx, model.Credentials{Username: *user, Password: *pass})
	if err != nil {
		return err
	}
	return a.print(sess.Identity)
}

func cmdSignup(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	var reg model.Registration
	role := fs.String("role", string(model.RoleStudent), "student or alumni")
	fs.StringVar(&reg.Username, "u", "", "username")
	fs.StringVar(&reg.Password, "p", "", "password")
	fs.StringVar(&reg.Email, "email", "", "email address")
	fs.StringVar(&reg.FirstName, "first", "", "first name")
	fs.StringVar(&reg.LastName, "last", "", "last name")
	fs.StringVar(&reg.Phone, "phone", "", "phone number")
	fs.StringVar(&reg.College, "college", "", "college")
	fs.StringVar(&reg.Degree, "degree", "", "degree or department")
	fs.IntVar(&reg.BatchYear, "batch", 0, "graduation year")
	fs.StringVar(&reg.Bio, "bio", "", "short bio")
	fs.StringVar(&reg.JobTitle, "job-title", "", "current job title (alumni)")
	fs.StringVar(&reg.CurrentCompany, "company", "", "current company (alumni)")
	fs.BoolVar(&reg.WillingToMentor, "mentor", false, "open to mentoring (alumni)")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	reg.Role = model.Role(*role)
	reg.ConfirmPassword = reg.Password

	sess, err := a.auth.Register(ctx, reg)
	if err != nil {
		return err
	}
	return a.print(sess.Identity)
}

func cmdLogout(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	return a.auth.Logout(ctx)
}

func cmdWhoami(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	sess, err := a.auth.Current(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Fprintln(a.out, "not logged in")
		return nil
	}
	return a.print(sess.Identity)
}

// cmdProfile: no argument shows the stored identity, "sync" refreshes it
// from the backend, "set k=v..." sends a partial update.
func cmdProfile(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	image := fs.String("image", "", "new profile image (with set)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var (
		sess *model.Session
		err  error
	)
	switch fs.Arg(0) {
	case "":
		sess, err = a.auth.Current(ctx)
		if err == nil && sess == nil {
			fmt.Fprintln(a.out, "not logged in")
			return nil
		}
	case "sync":
		sess, err = a.auth.SyncProfile(ctx)
	case "set":
		var payload apiclient.Payload
		payload, err = profilePayload(fs.Args()[1:], *image)
		if err != nil {
			fs.Usage()
			return errUsage
		}
		sess, err = a.auth.UpdateProfile(ctx, payload)
	default:
		fs.Usage()
		return errUsage
	}
	if err != nil {
		return err
	}
	return a.print(sess.Identity)
}

// profilePayload turns key=value pairs into JSON, or into a form when an
// image is attached. available_for takes a comma-separated id list.
func profilePayload(pairs []string, image string) (apiclient.Payload, error) {
	if len(pairs) == 0 && image == "" {
		return nil, errors.New("nothing to change")
	}

	fields := map[string]any{}
	form := apiclient.NewForm()
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%q is not key=value", pair)
		}
		if key == "available_for" {
			ids, err := parseIDs(value)
			if err != nil {
				return nil, err
			}
			fields[key] = ids
			for _, id := range ids {
				form.Set(key, strconv.FormatInt(id, 10))
			}
			continue
		}
		fields[key] = value
		form.Set(key, value)
	}

	if image == "" {
		return apiclient.JSON(fields), nil
	}
	data, err := os.ReadFile(image)
	if err != nil {
		return nil, err
	}
	return form.AddFile("image", filepath.Base(image), bytes.NewReader(data)), nil
}

func cmdDeleteAccount(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	yes := fs.Bool("yes", false, "confirm deletion")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if !*yes {
		fmt.Fprintln(a.usage, "gradlink delete-account: pass -yes to confirm")
		return errUsage
	}
	return a.auth.DeleteAccount(ctx)
}

// =========================================================================
// EVENTS
// =========================================================================

func cmdEvents(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	events, err := a.api.ListEvents(ctx)
	if err != nil {
		return err
	}
	return a.print(events)
}

func cmdEventCreate(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	var in model.EventInput
	kind := fs.String("type", string(model.EventOffline), "online or offline")
	fs.StringVar(&in.Title, "title", "", "title")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.StringVar(&in.Date, "date", "", "date, YYYY-MM-DD")
	fs.StringVar(&in.Time, "time", "", "start time, HH:MM")
	fs.StringVar(&in.Location, "location", "", "address, or meeting URL for online events")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	in.Type = model.EventType(*kind)

	ev, err := a.api.CreateEvent(ctx, in)
	if err != nil {
		return err
	}
	return a.print(ev)
}

func cmdEventRegister(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	id, err := argID(fs, 0)
	if err != nil {
		return err
	}
	status, err := a.api.ToggleEventRegistration(ctx, id)
	if err != nil {
		return err
	}
	return a.print(status)
}

func cmdEventDelete(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	id, err := argID(fs, 0)
	if err != nil {
		return err
	}
	return a.api.DeleteEvent(ctx, id)
}

// =========================================================================
// ALUMNI
// =========================================================================

func cmdAlumni(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	switch fs.NArg() {
	case 0:
		cards, err := a.api.ListAlumni(ctx)
		if err != nil {
			return err
		}
		return a.print(cards)
	case 1:
		id, err := argID(fs, 0)
		if err != nil {
			return err
		}
		profile, err := a.api.GetAlumni(ctx, id)
		if err != nil {
			return err
		}
		return a.print(profile)
	}
	fs.Usage()
	return errUsage
}

func cmdStats(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	stats, err := a.api.DashboardStats(ctx)
	if err != nil {
		return err
	}
	return a.print(stats)
}

func cmdTypes(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	types, err := a.api.ListMentorshipTypes(ctx)
	if err != nil {
		return err
	}
	return a.print(types)
}

// =========================================================================
// MENTORSHIP
// =========================================================================

func cmdRequests(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	status := fs.String("status", "", "pending, accepted, rejected or cancelled")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	reqs, err := a.api.ListMentorshipRequests(ctx, model.RequestFilter{Status: model.RequestStatus(*status)})
	if err != nil {
		return err
	}
	return a.print(reqs)
}

func cmdRequestCreate(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	alumni := fs.Int64("alumni", 0, "alumnus id")
	types := fs.String("types", "", "comma-separated mentorship type ids")
	message := fs.String("message", "", "message to the alumnus")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	ids, err := parseIDs(*types)
	if err != nil {
		fmt.Fprintf(a.usage, "gradlink request-create: %v\n", err)
		return errUsage
	}

	req, err := a.api.CreateMentorshipRequest(ctx, model.MentorshipRequestInput{
		Alumni:          *alumni,
		MentorshipTypes: ids,
		Message:         *message,
	})
	if err != nil {
		return err
	}
	return a.print(req)
}

func requestAction(action func(*api.API, context.Context, int64) (*model.StatusResponse, error)) func(context.Context, *app, *flag.FlagSet, []string) error {
	return func(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
		if err := parse(fs, args, 1); err != nil {
			return err
		}
		id, err := argID(fs, 0)
		if err != nil {
			return err
		}
		status, err := action(a.api, ctx, id)
		if err != nil {
			return err
		}
		return a.print(status)
	}
}

func cmdActivities(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	request := fs.Int64("request", 0, "only activities of this request")
	status := fs.String("status", "", "pending, scheduled, in_progress or completed")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	acts, err := a.api.ListMentorshipActivities(ctx, model.ActivityFilter{
		RequestID: *request,
		Status:    model.ActivityStatus(*status),
	})
	if err != nil {
		return err
	}
	return a.print(acts)
}

func cmdActivityCreate(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	request := fs.Int64("request", 0, "mentorship request id")
	title := fs.String("title", "", "title")
	description := fs.String("description", "", "description")
	status := fs.String("status", "", "pending, scheduled, in_progress or completed")
	link := fs.String("link", "", "meeting link")
	file := fs.String("file", "", "attachment")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	var payload apiclient.Payload = apiclient.JSON(model.ActivityInput{
		MentorshipRequest: *request,
		Title:             *title,
		Description:       *description,
		Status:            model.ActivityStatus(*status),
		MeetingLink:       *link,
	})
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()

		form := apiclient.NewForm().
			Set("mentorship_request", strconv.FormatInt(*request, 10)).
			Set("title", *title)
		optional := []struct{ field, value string }{
			{"description", *description},
			{"status", *status},
			{"meeting_link", *link},
		}
		for _, o := range optional {
			if o.value != "" {
				form.Set(o.field, o.value)
			}
		}
		payload = form.AddFile("file", filepath.Base(*file), f)
	}

	act, err := a.api.CreateMentorshipActivity(ctx, payload)
	if err != nil {
		return err
	}
	return a.print(act)
}

func cmdActivityStatus(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	id, err := argID(fs, 0)
	if err != nil {
		return err
	}
	status := model.ActivityStatus(fs.Arg(1))
	act, err := a.api.UpdateMentorshipActivity(ctx, id, apiclient.JSON(model.ActivityUpdate{Status: &status}))
	if err != nil {
		return err
	}
	return a.print(act)
}

// =========================================================================
// JOBS AND REFERRALS
// =========================================================================

func cmdJobs(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	mine := fs.Bool("mine", false, "only jobs you posted")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	jobs, err := a.api.ListJobs(ctx, model.JobFilter{Mine: *mine})
	if err != nil {
		return err
	}
	return a.print(jobs)
}

func cmdJobCreate(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	var in model.JobInput
	kind := fs.String("type", "", "full_time, internship or contract")
	fs.StringVar(&in.Title, "title", "", "title")
	fs.StringVar(&in.Company, "company", "", "company")
	fs.StringVar(&in.Location, "location", "", "location")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.StringVar(&in.Link, "link", "", "application link")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	in.JobType = model.JobType(*kind)

	job, err := a.api.CreateJob(ctx, in)
	if err != nil {
		return err
	}
	return a.print(job)
}

func cmdJobDelete(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	id, err := argID(fs, 0)
	if err != nil {
		return err
	}
	return a.api.DeleteJob(ctx, id)
}

func cmdReferrals(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	refs, err := a.api.ListReferrals(ctx)
	if err != nil {
		return err
	}
	return a.print(refs)
}

// cmdReferralCreate lets api.CreateReferral reject a missing resume, so
// the rule lives in one place.
func cmdReferralCreate(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	job := fs.Int64("job", 0, "job id")
	resume := fs.String("resume", "", "resume file (required)")
	message := fs.String("message", "", "note to the poster")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	form := apiclient.NewForm().Set("job", strconv.FormatInt(*job, 10))
	if *message != "" {
		form.Set("message", *message)
	}
	if *resume != "" {
		f, err := os.Open(*resume)
		if err != nil {
			return err
		}
		defer f.Close()
		form.AddFile("resume", filepath.Base(*resume), f)
	}

	ref, err := a.api.CreateReferral(ctx, form)
	if err != nil {
		return err
	}
	return a.print(ref)
}

func cmdReferralStatus(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 2); err != nil {
		return err
	}
	id, err := argID(fs, 0)
	if err != nil {
		return err
	}
	status := model.ReferralStatus(fs.Arg(1))
	ref, err := a.api.UpdateReferral(ctx, id, model.ReferralUpdate{Status: &status})
	if err != nil {
		return err
	}
	return a.print(ref)
}

func cmdMedia(_ context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.out, a.api.MediaURL(fs.Arg(0)))
	return err
}

// parseIDs reads "1,2,3". Empty input is an empty list.
func parseIDs(s string) ([]int64, error) {
	ids := []int64{}
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
