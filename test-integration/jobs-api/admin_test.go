package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/maniaxatwork/jobs-server/test-integration/jobs-api/helpers"
)

type archiveList struct {
	Archives []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"archives"`
}

type job struct {
	ID        int64  `json:"id"`
	PID       int64  `json:"pid"`
	Headline  string `json:"headline"`
	Alias     string `json:"alias"`
	Author    int64  `json:"author"`
	Published bool   `json:"published"`
}

var _ = Describe("Back-end API", Label("admin"), func() {
	var (
		tempDir      string
		serverHelper *helpers.ServerTestHelper
		adminToken   string
		editorToken  string
	)

	BeforeEach(func() {
		tempDir = createTempDir("admin-test-")
		configFile := helpers.WriteConfigYAML(tempDir, helpers.ConfigOptions{
			Modules: helpers.DefaultModules(),
			JWT:     true,
		})

		serverHelper = helpers.NewServerTestHelper(ctx, configFile)
		Expect(serverHelper.StartServer()).To(Succeed())
		serverHelper.WaitForServerReady(10 * time.Second)

		adminToken = helpers.UserToken(1, nil)
		editorToken = helpers.UserToken(2, nil)
	})

	AfterEach(func() {
		Expect(serverHelper.StopServer()).To(Succeed())
		cleanupTempDir(tempDir)
	})

	It("should require a bearer token", func() {
		resp, err := serverHelper.Get("/admin/archives", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("should list the archives a user may edit", func() {
		resp, err := serverHelper.Get("/admin/archives", adminToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var all archiveList
		Expect(json.Unmarshal([]byte(resp.Body), &all)).To(Succeed())
		Expect(all.Archives).To(HaveLen(3))

		resp, err = serverHelper.Get("/admin/archives", editorToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var mounted archiveList
		Expect(json.Unmarshal([]byte(resp.Body), &mounted)).To(Succeed())
		Expect(mounted.Archives).To(HaveLen(1))
		Expect(mounted.Archives[0].Title).To(Equal("Open positions"))
	})

	It("should deny editors archives they have not mounted", func() {
		resp, err := serverHelper.Get("/admin/archives/2", editorToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))

		resp, err = serverHelper.Do(http.MethodPost, "/admin/archives/2/jobs", editorToken, `{"headline":"Sneaky"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
	})

	It("should publish a created job on the front-end", func() {
		resp, err := serverHelper.Do(http.MethodPost, "/admin/archives/1/jobs", editorToken,
			`{"headline":"  Platform Engineer ","teaser":"<p>Run our clusters.</p>","published":true}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusCreated), resp.Body)
		Expect(resp.Header.Get("X-Cache-Tags")).NotTo(BeEmpty())

		var created job
		Expect(json.Unmarshal([]byte(resp.Body), &created)).To(Succeed())
		Expect(created.PID).To(Equal(int64(1)))
		Expect(created.Headline).To(Equal("Platform Engineer"))
		Expect(created.Alias).To(Equal("platform-engineer"))
		Expect(created.Author).To(Equal(int64(2)))

		resp, err = serverHelper.Get("/modules/10", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Body).To(ContainSubstring("Platform Engineer"))

		resp, err = serverHelper.Get("/modules/20?items=platform-engineer", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Body).To(ContainSubstring("Run our clusters."))
	})

	It("should hide toggled jobs and delete them", func() {
		resp, err := serverHelper.Do(http.MethodPost, "/admin/jobs/2/toggle", adminToken, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.Body)

		var toggled job
		Expect(json.Unmarshal([]byte(resp.Body), &toggled)).To(Succeed())
		Expect(toggled.Published).To(BeFalse())

		resp, err = serverHelper.Get("/modules/20?items=frontend-engineer", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

		resp, err = serverHelper.Do(http.MethodDelete, "/admin/jobs/2", adminToken, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(BeElementOf(http.StatusOK, http.StatusNoContent))

		resp, err = serverHelper.Get("/admin/jobs/2", adminToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("should create archives and mount them for the creator", func() {
		resp, err := serverHelper.Do(http.MethodPost, "/admin/archives", editorToken, `{"title":"Internships","jumpTo":3}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusCreated), resp.Body)

		var created struct {
			ID int64 `json:"id"`
		}
		Expect(json.Unmarshal([]byte(resp.Body), &created)).To(Succeed())

		resp, err = serverHelper.Get(fmt.Sprintf("/admin/archives/%d", created.ID), editorToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Body).To(ContainSubstring("Internships"))
	})

	It("should preview search results", func() {
		resp, err := serverHelper.Get("/admin/jobs/1/serp", adminToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Body).To(ContainSubstring("https://www.example.org/job-detail/items/senior-go-developer"))
	})
})
