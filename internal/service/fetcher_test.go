package service

import (
	"context"
	"encoding/json"
	"net/url"

	"seller-insight/internal/imaging"
	"seller-insight/internal/models"
	"seller-insight/internal/upstream"
)

type fakeResponse struct {
	data string
	err  error
}

type fetchCall struct {
	res    upstream.Resource
	params url.Values
}

// fakeFetcher answers by resource path; unknown paths get {}.
type fakeFetcher struct {
	responses map[string]fakeResponse
	calls     []fetchCall
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{responses: make(map[string]fakeResponse)}
}

func (f *fakeFetcher) on(res upstream.Resource, data string) *fakeFetcher {
	f.responses[res.Path] = fakeResponse{data: data}
	return f
}

func (f *fakeFetcher) fail(res upstream.Resource, err error) *fakeFetcher {
	f.responses[res.Path] = fakeResponse{err: err}
	return f
}

func (f *fakeFetcher) Fetch(_ context.Context, res upstream.Resource, params url.Values) (json.RawMessage, error) {
	f.calls = append(f.calls, fetchCall{res: res, params: params})
	r, ok := f.responses[res.Path]
	if !ok {
		return json.RawMessage("{}"), nil
	}
	if r.err != nil {
		return nil, r.err
	}
	return json.RawMessage(r.data), nil
}

func (f *fakeFetcher) callsTo(res upstream.Resource) []fetchCall {
	var out []fetchCall
	for _, c := range f.calls {
		if c.res.Path == res.Path {
			out = append(out, c)
		}
	}
	return out
}

type fakeInspector struct {
	result *imaging.Result
	err    error
	urls   []string
}

func (f *fakeInspector) Inspect(_ context.Context, imageURL string) (*imaging.Result, error) {
	f.urls = append(f.urls, imageURL)
	return f.result, f.err
}

// fakePublisher records events. With block set, every publish waits for
// its context to end, like a write to an unreachable broker.
type fakePublisher struct {
	restock   []*models.RestockAlertEvent
	campaigns []*models.CampaignSuggestedEvent
	deadlines []bool
	block     bool
	err       error
}

func (f *fakePublisher) publish(ctx context.Context) error {
	_, ok := ctx.Deadline()
	f.deadlines = append(f.deadlines, ok)
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f *fakePublisher) PublishRestockAlert(ctx context.Context, e *models.RestockAlertEvent) error {
	f.restock = append(f.restock, e)
	return f.publish(ctx)
}

func (f *fakePublisher) PublishCampaignSuggested(ctx context.Context, e *models.CampaignSuggestedEvent) error {
	f.campaigns = append(f.campaigns, e)
	return f.publish(ctx)
}

type fakeRecorder struct {
	runs []models.InsightRun
	err  error
}

func (f *fakeRecorder) RecordRun(_ context.Context, run *models.InsightRun) error {
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeRecorder) ListRecentRuns(_ context.Context, limit int) ([]models.InsightRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.runs) {
		limit = len(f.runs)
	}
	return f.runs[:limit], nil
}
