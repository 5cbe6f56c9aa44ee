package poya

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"besparks-backend/lib/besparks"
	"besparks-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const loginPageHTML = `<html><body><form method="post">
<input type="hidden" name="__VIEWSTATE" value="vs-login" />
<input type="hidden" name="__EVENTVALIDATION" value="ev-login" />
<input type="text" name="Account" />
</form></body></html>`

const queryPageHTML = `<html><body><form method="post">
<input type="hidden" name="__VIEWSTATE" value="vs-query" />
<input type="hidden" name="__VIEWSTATEGENERATOR" value="gen-query" />
<input type="hidden" name="__EVENTVALIDATION" value="ev-query" />
</form></body></html>`

const salesTableHTML = `<html><body><table id="dgProd">
<tr><th>廠商名稱</th><th>店內碼</th><th>國際條碼</th><th>商品名稱</th><th>銷售量</th><th>庫存量</th></tr>
<tr><td>BeSparks</td><td>001</td><td> 4710000000001 </td><td>Toner</td><td>3</td><td>12</td></tr>
<tr><td>BeSparks</td><td>002</td><td>4710000000002</td><td>Serum</td><td>0</td><td>5</td></tr>
<tr><td colspan="6">小計</td></tr>
</table></body></html>`

// portalFixture fakes the vendor portal's WebForms flow: hidden-field
// login, redirect on success, and a slow sales report.
type portalFixture struct {
	failLogin  bool
	resultBody string

	loginForm url.Values
	queryForm url.Values
}

func (p *portalFixture) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(loginPageHTML))
			return
		}
		require.NoError(t, r.ParseForm())
		p.loginForm = r.PostForm
		if p.failLogin {
			w.Write([]byte(loginPageHTML))
			return
		}
		http.Redirect(w, r, "/Default.aspx", http.StatusFound)
	})
	mux.HandleFunc("/Default.aspx", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>home</html>"))
	})
	mux.HandleFunc(queryPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(queryPageHTML))
			return
		}
		require.NoError(t, r.ParseForm())
		p.queryForm = r.PostForm
		w.Write([]byte(p.resultBody))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func (p *portalFixture) client(t *testing.T) *Client {
	server := p.server(t)
	client, err := NewClient(ClientOptions{
		BaseUrl:     server.URL,
		Account:     "vendor",
		Password:    "pwd",
		AuthPwd:     "auth",
		ResultDelay: besparks.Duration(time.Millisecond),
	})
	require.NoError(t, err)
	return client
}

func TestLogin(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "services/poya")
	defer cleanup()

	fixture := &portalFixture{}
	client := fixture.client(t)

	require.NoError(t, client.Login(context.Background()))
	require.Equal(t, "vs-login", fixture.loginForm.Get("__VIEWSTATE"))
	require.Equal(t, "ev-login", fixture.loginForm.Get("__EVENTVALIDATION"))
	require.Equal(t, "vendor", fixture.loginForm.Get("Account"))
	require.Equal(t, "pwd", fixture.loginForm.Get("Pwd"))
	require.Equal(t, "auth", fixture.loginForm.Get("AuthPwd"))
}

func TestLoginFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "services/poya")
	defer cleanup()

	fixture := &portalFixture{failLogin: true}
	client := fixture.client(t)

	err := client.Login(context.Background())
	require.ErrorIs(t, err, LoginFailed)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseUrl: "https://example.com"})
	require.Error(t, err)
}

func TestFetchDailySales(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "services/poya")
	defer cleanup()

	fixture := &portalFixture{resultBody: salesTableHTML}
	client := fixture.client(t)
	require.NoError(t, client.Login(context.Background()))

	day := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)
	rows, err := client.FetchDailySales(context.Background(), day)
	require.NoError(t, err)

	require.Equal(t, "2026/08/28", fixture.queryForm.Get("EcrDate1"))
	require.Equal(t, "2026/08/28", fixture.queryForm.Get("EcrDate2"))
	require.Equal(t, "1", fixture.queryForm.Get("ddlType"))
	require.Equal(t, "on", fixture.queryForm.Get("chkSum"))
	require.Equal(t, "RBtnPos", fixture.queryForm.Get("GroupType"))
	require.Equal(t, "gen-query", fixture.queryForm.Get("__VIEWSTATEGENERATOR"))

	require.Equal(t, []DailySalesRow{
		{
			VendorName:  "BeSparks",
			StoreCode:   "001",
			Barcode:     "4710000000001",
			ProductName: "Toner",
			SalesQty:    "3",
			StockQty:    "12",
		},
		{
			VendorName:  "BeSparks",
			StoreCode:   "002",
			Barcode:     "4710000000002",
			ProductName: "Serum",
			SalesQty:    "0",
			StockQty:    "5",
		},
	}, rows)
}

func TestFetchDailySalesNoTable(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "services/poya")
	defer cleanup()

	fixture := &portalFixture{resultBody: "<html><body>查無資料</body></html>"}
	client := fixture.client(t)
	require.NoError(t, client.Login(context.Background()))

	rows, err := client.FetchDailySales(context.Background(), time.Now())
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestParseSalesTableSkipsMalformedRows(t *testing.T) {
	rows, err := parseSalesTable([]byte(salesTableHTML))
	require.NoError(t, err)
	// the header row and the subtotal row don't have six data cells
	require.Len(t, rows, 2)
	// cell text is trimmed
	require.Equal(t, "4710000000001", rows[0].Barcode)
}

func TestSalesQuantity(t *testing.T) {
	qty, ok := DailySalesRow{SalesQty: "3"}.SalesQuantity()
	require.True(t, ok)
	require.Equal(t, 3, qty)

	qty, ok = DailySalesRow{SalesQty: "1,234"}.SalesQuantity()
	require.True(t, ok)
	require.Equal(t, 1234, qty)

	_, ok = DailySalesRow{SalesQty: ""}.SalesQuantity()
	require.False(t, ok)

	_, ok = DailySalesRow{SalesQty: "-"}.SalesQuantity()
	require.False(t, ok)
}
