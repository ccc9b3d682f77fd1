package mockapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/DataRockMyWorld/workshopctl/internal/modules/model"
	"github.com/gin-gonic/gin"
)

const pageSize = model.PageSize

// siteScope limits site supervisors to their own site. HQ accounts see everything.
func siteScope(u *User) *int {
	if u.IsSuperuser || u.CanSeeAllSites {
		return nil
	}
	return u.SiteID
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		abortDetail(c, http.StatusNotFound, msgNotFound)
		return 0, false
	}
	return id, true
}

func (s *Server) ListServiceRequests(c *gin.Context) {
	q := srQuery{siteID: siteScope(currentUser(c)), partsOnly: c.Query("parts_only") == "true"}
	for key, dst := range map[string]**int{
		"customer_id": &q.customerID,
		"vehicle_id":  &q.vehicleID,
		"mechanic_id": &q.mechanicID,
	} {
		v, ok := queryInt(c, key)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{key: []string{"A valid integer is required."}})
			return
		}
		*dst = v
	}

	out, ok := paginate(c, s.data.listServiceRequests(q), pageSize)
	if !ok {
		abortDetail(c, http.StatusNotFound, msgInvalidPage)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) GetServiceRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sr, found := s.data.serviceRequest(id, siteScope(currentUser(c)))
	if !found {
		abortDetail(c, http.StatusNotFound, msgNotFound)
		return
	}
	c.JSON(http.StatusOK, sr)
}

func (s *Server) CompleteServiceRequest(c *gin.Context) {
	u := currentUser(c)
	if !u.CanWrite() {
		abortDetail(c, http.StatusForbidden, msgForbidden)
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	sr, found, err := s.data.completeServiceRequest(id, siteScope(u))
	switch {
	case !found:
		abortDetail(c, http.StatusNotFound, msgNotFound)
	case err != nil:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": []string{err.Error()}})
	default:
		c.JSON(http.StatusOK, sr)
	}
}

func (s *Server) ListCustomers(c *gin.Context) {
	out, ok := paginate(c, s.data.listCustomers(), pageSize)
	if !ok {
		abortDetail(c, http.StatusNotFound, msgInvalidPage)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) GetCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cust, found := s.data.customer(id)
	if !found {
		abortDetail(c, http.StatusNotFound, msgNotFound)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (s *Server) ListInvoices(c *gin.Context) {
	out, ok := paginate(c, s.data.listInvoices(), pageSize)
	if !ok {
		abortDetail(c, http.StatusNotFound, msgInvalidPage)
		return
	}
	c.JSON(http.StatusOK, out)
}

// InvoicePDF serves a one-page PDF for the invoice.
func (s *Server) InvoicePDF(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	inv, found := s.data.invoice(id)
	if !found {
		abortDetail(c, http.StatusNotFound, msgNotFound)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%d.pdf"`, inv.ID))
	c.Data(http.StatusOK, "application/pdf", invoicePDF(inv))
}

func (s *Server) Dashboard(c *gin.Context) {
	if siteScope(currentUser(c)) != nil {
		abortDetail(c, http.StatusForbidden, msgForbidden)
		return
	}
	period := 30
	if v, ok := queryInt(c, "period"); ok && v != nil && *v > 0 {
		period = *v
	}
	c.JSON(http.StatusOK, s.data.dashboard(period))
}

// Reports summarises the period for HQ, or for the caller's site.
func (s *Server) Reports(c *gin.Context) {
	period := 30
	if v, ok := queryInt(c, "period"); ok && v != nil && *v > 0 {
		period = *v
	}
	c.JSON(http.StatusOK, s.data.report(period, siteScope(currentUser(c)), s.now()))
}

// SiteDashboard is the sales view for site-scoped users.
func (s *Server) SiteDashboard(c *gin.Context) {
	site := siteScope(currentUser(c))
	if site == nil {
		abortDetail(c, http.StatusForbidden, msgForbidden)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, s.data.siteMetrics(*site, s.now()))
}

// Export writes one of the collections as CSV.
func (s *Server) Export(c *gin.Context) {
	var rows [][]string
	switch c.Query("resource") {
	case "service_requests":
		rows = append(rows, []string{"id", "display_number", "status", "site", "labor_cost", "created_at"})
		for _, sr := range s.data.listServiceRequests(srQuery{siteID: siteScope(currentUser(c))}) {
			rows = append(rows, []string{strconv.Itoa(sr.ID), sr.DisplayNumber, sr.Status,
				strconv.Itoa(sr.Site), sr.LaborCost, sr.CreatedAt})
		}
	case "customers":
		rows = append(rows, []string{"id", "first_name", "last_name", "phone_number"})
		for _, cust := range s.data.listCustomers() {
			rows = append(rows, []string{strconv.Itoa(cust.ID), cust.FirstName, cust.LastName, cust.PhoneNumber})
		}
	case "invoices":
		rows = append(rows, []string{"id", "service_request", "total_cost", "paid"})
		for _, inv := range s.data.listInvoices() {
			rows = append(rows, []string{strconv.Itoa(inv.ID), strconv.Itoa(inv.ServiceRequest),
				inv.TotalCost, strconv.FormatBool(inv.Paid)})
		}
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"resource": []string{"Unknown resource."}})
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		_ = c.Error(err)
		abortDetail(c, http.StatusInternalServerError, "A server error occurred.")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, c.Query("resource")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func invoicePDF(inv model.Invoice) []byte {
	text := fmt.Sprintf("Invoice %d  Total GHC %s", inv.ID, inv.TotalCost)
	stream := fmt.Sprintf("BT /F1 18 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
