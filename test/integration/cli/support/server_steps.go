package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"
	zxinggo "github.com/ericlevine/zxinggo"

	"github.com/MeKo-Tech/barcoded/internal/barcode"
	"github.com/MeKo-Tech/barcoded/internal/server"
	"github.com/MeKo-Tech/barcoded/internal/testutil"
)

var errNoServer = errors.New("no server is running")

func (testCtx *TestContext) aRunningBarcodeServer() error {
	return testCtx.createTestHTTPServer(server.Config{CORSOrigins: []string{"*"}})
}

func (testCtx *TestContext) aRunningBarcodeServerWithMinuteLimit(limit int) error {
	return testCtx.createTestHTTPServer(server.Config{
		CORSOrigins: []string{"*"},
		RateLimit:   server.RateLimitConfig{Enabled: true, RequestsPerMinute: limit},
	})
}

func (testCtx *TestContext) aRunningBarcodeServerWithBodyLimit(limit int64) error {
	return testCtx.createTestHTTPServer(server.Config{CORSOrigins: []string{"*"}, MaxBodyBytes: limit})
}

func (testCtx *TestContext) theRequestHeaderIs(name, value string) error {
	testCtx.RequestHeaders[name] = value
	return nil
}

// do sends a request to the test server and records the response.
func (testCtx *TestContext) do(method, path string, body []byte) error {
	if testCtx.HTTPTestServer == nil {
		return errNoServer
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, testCtx.GetServerURL()+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range testCtx.RequestHeaders {
		req.Header.Set(k, v)
	}

	resp, err := testCtx.HTTPTestServer.Client().Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = data
	testCtx.LastHTTPHeaders = resp.Header
	return nil
}

func (testCtx *TestContext) iPOSTToWithBody(path string, body *godog.DocString) error {
	return testCtx.do(http.MethodPost, path, []byte(body.Content))
}

func (testCtx *TestContext) iPOSTToTimes(path string, n int, body *godog.DocString) error {
	for range n {
		if err := testCtx.do(http.MethodPost, path, []byte(body.Content)); err != nil {
			return err
		}
	}
	return nil
}

func (testCtx *TestContext) iGET(path string) error {
	return testCtx.do(http.MethodGet, path, nil)
}

func (testCtx *TestContext) iSendAnOPTIONSRequestTo(path string) error {
	return testCtx.do(http.MethodOptions, path, nil)
}

// iPOSTTheFixture posts a stored request and checks its recorded expectations.
func (testCtx *TestContext) iPOSTTheFixture(name string) error {
	fixture, err := testutil.ReadFixture(name)
	if err != nil {
		return err
	}
	if err := testCtx.do(http.MethodPost, fixture.Path(), fixture.Request); err != nil {
		return err
	}
	want := fixture.Expected
	if err := testCtx.theResponseStatusShouldBe(want.Status); err != nil {
		return fmt.Errorf("fixture %s: %w", name, err)
	}
	if want.ContentType != "" {
		if err := testCtx.theResponseHeaderShouldBe("Content-Type", want.ContentType); err != nil {
			return fmt.Errorf("fixture %s: %w", name, err)
		}
	}
	if want.Filename != "" {
		if err := testCtx.theResponseHeaderShouldContain("Content-Disposition", want.Filename); err != nil {
			return fmt.Errorf("fixture %s: %w", name, err)
		}
	}
	if want.Message != "" {
		if err := testCtx.theResponseBodyShouldContain(want.Message); err != nil {
			return fmt.Errorf("fixture %s: %w", name, err)
		}
	}
	return nil
}

func (testCtx *TestContext) theResponseStatusShouldBe(status int) error {
	if testCtx.LastHTTPStatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, value string) error {
	if got := testCtx.LastHTTPHeaders.Get(name); got != value {
		return fmt.Errorf("expected header %s to be %q, got %q", name, value, got)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldContain(name, value string) error {
	if got := testCtx.LastHTTPHeaders.Get(name); !strings.Contains(got, value) {
		return fmt.Errorf("expected header %s to contain %q, got %q", name, value, got)
	}
	return nil
}

func (testCtx *TestContext) theResponseBodyShouldBe(body string) error {
	if got := strings.TrimRight(string(testCtx.LastHTTPResponse), "\n"); got != body {
		return fmt.Errorf("expected body %q, got %q", body, got)
	}
	return nil
}

func (testCtx *TestContext) theResponseBodyShouldContain(text string) error {
	if !bytes.Contains(testCtx.LastHTTPResponse, []byte(text)) {
		return fmt.Errorf("response body does not contain %q: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldListItems(n int) error {
	var items []server.MetadataItem
	if err := json.Unmarshal(testCtx.LastHTTPResponse, &items); err != nil {
		return fmt.Errorf("response is not a metadata list: %w", err)
	}
	if len(items) != n {
		return fmt.Errorf("expected %d items, got %d", n, len(items))
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldBeAnImageOfPixels(width, height int) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(testCtx.LastHTTPResponse))
	if err != nil {
		return fmt.Errorf("response is not an image: %w", err)
	}
	if cfg.Width != width || cfg.Height != height {
		return fmt.Errorf("expected %dx%d image, got %dx%d", width, height, cfg.Width, cfg.Height)
	}
	return nil
}

// theResponseShouldDecodeTo reads the symbol in a raster response back.
func (testCtx *TestContext) theResponseShouldDecodeTo(text string) error {
	img, _, err := image.Decode(bytes.NewReader(testCtx.LastHTTPResponse))
	if err != nil {
		return fmt.Errorf("response is not an image: %w", err)
	}
	results, err := barcode.NewBackend().Decode(context.Background(), img, barcode.Options{TryHarder: true})
	if errors.Is(err, zxinggo.ErrNotFound) {
		return errors.New("no barcode found in response image")
	}
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Text == text {
			return nil
		}
	}
	return fmt.Errorf("decoded %d symbols, none with text %q", len(results), text)
}

// RegisterServerSteps registers the HTTP step definitions.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a running barcode server$`, testCtx.aRunningBarcodeServer)
	sc.Step(`^a running barcode server with a limit of (\d+) requests per minute$`,
		testCtx.aRunningBarcodeServerWithMinuteLimit)
	sc.Step(`^a running barcode server accepting bodies up to (\d+) bytes$`,
		testCtx.aRunningBarcodeServerWithBodyLimit)
	sc.Step(`^the request header "([^"]*)" is "([^"]*)"$`, testCtx.theRequestHeaderIs)

	sc.Step(`^I POST to "([^"]*)" with body:$`, testCtx.iPOSTToWithBody)
	sc.Step(`^I POST to "([^"]*)" (\d+) times with body:$`, testCtx.iPOSTToTimes)
	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^I send an OPTIONS request to "([^"]*)"$`, testCtx.iSendAnOPTIONSRequestTo)
	sc.Step(`^I POST the fixture "([^"]*)"$`, testCtx.iPOSTTheFixture)

	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
	sc.Step(`^the response header "([^"]*)" should contain "([^"]*)"$`, testCtx.theResponseHeaderShouldContain)
	sc.Step(`^the response body should be "([^"]*)"$`, testCtx.theResponseBodyShouldBe)
	sc.Step(`^the response body should contain "([^"]*)"$`, testCtx.theResponseBodyShouldContain)
	sc.Step(`^the response should list (\d+) items$`, testCtx.theResponseShouldListItems)
	sc.Step(`^the response should be a (\d+)x(\d+) pixel image$`, testCtx.theResponseShouldBeAnImageOfPixels)
	sc.Step(`^the response image should decode to "([^"]*)"$`, testCtx.theResponseShouldDecodeTo)
}
