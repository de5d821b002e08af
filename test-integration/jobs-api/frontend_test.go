package integration

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/maniaxatwork/jobs-server/test-integration/jobs-api/helpers"
)

var _ = Describe("Front-end", Label("frontend"), func() {
	var (
		tempDir      string
		serverHelper *helpers.ServerTestHelper
	)

	AfterEach(func() {
		if serverHelper != nil {
			Expect(serverHelper.StopServer()).To(Succeed())
		}
		cleanupTempDir(tempDir)
	})

	Context("with anonymous access", func() {
		var sitemapPath string

		BeforeEach(func() {
			tempDir = createTempDir("frontend-test-")
			sitemapPath = filepath.Join(tempDir, "sitemap.xml")
			configFile := helpers.WriteConfigYAML(tempDir, helpers.ConfigOptions{
				Modules:     helpers.DefaultModules(),
				SitemapPath: sitemapPath,
			})

			serverHelper = helpers.NewServerTestHelper(ctx, configFile)
			Expect(serverHelper.StartServer()).To(Succeed())
			serverHelper.WaitForServerReady(10 * time.Second)
		})

		It("should list the configured modules", func() {
			resp, err := serverHelper.Get("/modules", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var modules []map[string]any
			Expect(json.Unmarshal([]byte(resp.Body), &modules)).To(Succeed())
			Expect(modules).To(HaveLen(3))
			Expect(modules[0]).To(HaveKeyWithValue("type", "jobslist"))
			Expect(modules[0]).To(HaveKeyWithValue("name", "Job list"))
		})

		It("should render the job list as JSON and HTML", func() {
			resp, err := serverHelper.Get("/modules/10", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Body).To(ContainSubstring("Senior Go Developer"))
			Expect(resp.Body).NotTo(ContainSubstring("Unpublished role"))
			Expect(resp.Body).NotTo(ContainSubstring("Future role"))
			Expect(resp.Header.Get("X-Cache-Tags")).NotTo(BeEmpty())

			resp, err = serverHelper.GetHTML("/modules/10")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/html"))
			Expect(resp.Body).To(ContainSubstring("mod_jobslist"))
			Expect(resp.Body).To(ContainSubstring("Frontend Engineer"))
		})

		DescribeTable("rendering the reader",
			func(path string, status int, body string) {
				resp, err := serverHelper.Get(path, "")
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(status), resp.Body)
				if body != "" {
					Expect(resp.Body).To(ContainSubstring(body))
				}
			},
			Entry("by alias", "/modules/20?items=senior-go-developer", http.StatusOK, "Senior Go Developer"),
			Entry("by page url", "/modules/20?url="+url.QueryEscape("/job-detail?items=frontend-engineer"), http.StatusOK, "Frontend Engineer"),
			Entry("unknown job", "/modules/20?items=nope", http.StatusNotFound, ""),
			Entry("unpublished job", "/modules/20?items=3", http.StatusNotFound, ""),
			Entry("preview without identity", "/modules/20?items=3&preview=1", http.StatusNotFound, ""),
			Entry("protected archive", "/modules/21?items=member-only", http.StatusInternalServerError, "has no archives specified"),
			Entry("unknown module", "/modules/99", http.StatusNotFound, ""),
		)

		It("should redirect internal jobs to their target page", func() {
			resp, err := serverHelper.Get("/modules/20?items=redirected-role", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusMovedPermanently))
			Expect(resp.Header.Get("Location")).To(Equal("https://www.example.org/jobs"))
		})

		It("should resolve insert tags", func() {
			resp, err := serverHelper.Get("/inserttags/"+url.PathEscape("jobs_url::1|absolute"), "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Body).To(ContainSubstring("https://www.example.org/job-detail/items/senior-go-developer"))

			resp, err = serverHelper.Do(http.MethodPost, "/inserttags/replace", "",
				`{"text":"Apply as {{jobs_title::2}} or [{{jobs::99}}]"}`)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var replaced struct {
				Text string `json:"text"`
			}
			Expect(json.Unmarshal([]byte(resp.Body), &replaced)).To(Succeed())
			Expect(replaced.Text).To(Equal("Apply as Frontend Engineer or []"))

			resp, err = serverHelper.Get("/inserttags/news_url::1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("should serve structured data of published jobs", func() {
			resp, err := serverHelper.Get("/jobs/senior-go-developer/schema", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("application/ld+json"))

			var posting map[string]any
			Expect(json.Unmarshal([]byte(resp.Body), &posting)).To(Succeed())
			Expect(posting).To(HaveKeyWithValue("@type", "JobPosting"))
			Expect(posting).To(HaveKeyWithValue("title", "Senior Go Developer"))

			resp, err = serverHelper.Get("/jobs/member-only/schema", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("should serve the sitemap and write it to disk", func() {
			resp, err := serverHelper.Get("/sitemap.xml", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Body).To(ContainSubstring("<loc>https://www.example.org/job-detail/items/senior-go-developer</loc>"))
			Expect(resp.Body).NotTo(ContainSubstring("member-only"))

			Eventually(func() (string, error) {
				data, err := os.ReadFile(sitemapPath)
				return string(data), err
			}, 5*time.Second, 100*time.Millisecond).Should(ContainSubstring("senior-go-developer"))
		})

		It("should list searchable pages", func() {
			resp, err := serverHelper.Get("/search/pages?root=1", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var pages struct {
				URLs []string `json:"urls"`
			}
			Expect(json.Unmarshal([]byte(resp.Body), &pages)).To(Succeed())
			Expect(pages.URLs).To(ContainElement("https://www.example.org/job-detail/items/senior-go-developer"))
		})

		It("should not expose the back-end API", func() {
			resp, err := serverHelper.Get("/admin/archives", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Context("with member tokens", func() {
		BeforeEach(func() {
			tempDir = createTempDir("member-test-")
			configFile := helpers.WriteConfigYAML(tempDir, helpers.ConfigOptions{
				Modules: helpers.DefaultModules(),
				JWT:     true,
			})

			serverHelper = helpers.NewServerTestHelper(ctx, configFile)
			Expect(serverHelper.StartServer()).To(Succeed())
			serverHelper.WaitForServerReady(10 * time.Second)
		})

		It("should show protected archives to their member groups", func() {
			path := "/modules/21?url=" + url.QueryEscape("/member-jobs?items=member-only")

			resp, err := serverHelper.Get(path, helpers.MemberToken(3, 5))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.Body)
			Expect(resp.Body).To(ContainSubstring("Member only role"))

			resp, err = serverHelper.Get(path, helpers.MemberToken(4, 6))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		})

		It("should preview unpublished jobs for back-end users only", func() {
			resp, err := serverHelper.Get("/modules/20?items=3&preview=1", helpers.MemberToken(3, 5))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

			resp, err = serverHelper.Get("/modules/20?items=3&preview=1", helpers.UserToken(1, nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.Body)
			Expect(resp.Body).To(ContainSubstring("Unpublished role"))
		})

		It("should keep the front-end open to anonymous visitors", func() {
			resp, err := serverHelper.Get("/modules/10", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("should reject tokens with a wrong signature", func() {
			resp, err := serverHelper.Get("/modules/10", "not-a-token")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})
})
