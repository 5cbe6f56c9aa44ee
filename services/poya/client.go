// Package poya scrapes daily store-level sales from the Poya vendor portal
// and forwards them to the spreadsheet and the order-ingest API.
package poya

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"besparks-backend/lib/besparks"
	"besparks-backend/lib/restyutil"
	"besparks-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/poya")

var LoginFailed = fmt.Errorf("Failed to login to the vendor portal.")

const (
	loginPath = "/LoginCom.aspx"
	queryPath = "/SaleGenQueryAll.aspx"
)

type ClientOptions struct {
	BaseUrl  string `json:"base_url"`
	Account  string `json:"account"`
	Password string `json:"password"`
	AuthPwd  string `json:"auth_pwd"`
	// wait between submitting the sales query and reading the result,
	// the portal renders the report slowly; defaults to 15s
	ResultDelay besparks.Duration `json:"result_delay"`
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	account     string
	password    string
	authPwd     string
	resultDelay time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if opts.Account == "" || opts.Password == "" || opts.AuthPwd == "" {
		return nil, fmt.Errorf("portal credentials are not configured")
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 60)

	telemetry.InstrumentResty(client, "poya/http")
	restyutil.InstrumentClient(client, restyInstrumentOutput)

	resultDelay := time.Duration(opts.ResultDelay)
	if resultDelay <= 0 {
		resultDelay = time.Second * 15
	}

	return &Client{
		BaseUrl:     baseUrl,
		Http:        client,
		account:     opts.Account,
		password:    opts.Password,
		authPwd:     opts.AuthPwd,
		resultDelay: resultDelay,
	}, nil
}

// hiddenField pulls an ASP.NET hidden form value out of a page.
func hiddenField(doc *goquery.Document, name string) string {
	return doc.Find(fmt.Sprintf("input[name=%s]", name)).AttrOr("value", "")
}

// Login authenticates against the portal's WebForms login page. The portal
// signals success only through a redirect to Default.aspx.
func (c *Client) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(loginPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse login page html")
		return err
	}

	viewstate := hiddenField(doc, "__VIEWSTATE")
	eventvalidation := hiddenField(doc, "__EVENTVALIDATION")
	if viewstate == "" || eventvalidation == "" {
		span.SetStatus(codes.Error, "failed to find login form state")
		return fmt.Errorf("could not find login form state fields")
	}

	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"__VIEWSTATE":       viewstate,
			"__EVENTVALIDATION": eventvalidation,
			"Account":           c.account,
			"Pwd":               c.password,
			"AuthPwd":           c.authPwd,
			"btnLogin":          "身份驗證",
		}).
		Post(loginPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return err
	}

	finalUrl := res.RawResponse.Request.URL.String()
	if !strings.Contains(finalUrl, "Default.aspx") {
		span.SetStatus(codes.Error, LoginFailed.Error())
		return LoginFailed
	}
	return nil
}
