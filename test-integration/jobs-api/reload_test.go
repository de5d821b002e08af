package integration

import (
	"encoding/json"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/maniaxatwork/jobs-server/test-integration/jobs-api/helpers"
)

var _ = Describe("Configuration", Label("config"), func() {
	var (
		tempDir      string
		serverHelper *helpers.ServerTestHelper
	)

	AfterEach(func() {
		Expect(serverHelper.StopServer()).To(Succeed())
		cleanupTempDir(tempDir)
	})

	Context("when the configuration file changes", func() {
		var opts helpers.ConfigOptions

		BeforeEach(func() {
			tempDir = createTempDir("reload-test-")
			opts = helpers.ConfigOptions{
				SeedPath: helpers.CopySeed(tempDir),
				Modules:  helpers.DefaultModules()[:1],
			}
			configFile := helpers.WriteConfigYAML(tempDir, opts)

			serverHelper = helpers.NewServerTestHelper(ctx, configFile)
			Expect(serverHelper.StartServer()).To(Succeed())
			serverHelper.WaitForServerReady(10 * time.Second)
		})

		It("should rebuild the modules without a restart", func() {
			resp, err := serverHelper.Get("/modules/20?items=senior-go-developer", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

			opts.Modules = helpers.DefaultModules()
			helpers.WriteConfigYAML(tempDir, opts)

			Eventually(func() (int, error) {
				resp, err := serverHelper.Get("/modules", "")
				if err != nil {
					return 0, err
				}
				var modules []map[string]any
				if err := json.Unmarshal([]byte(resp.Body), &modules); err != nil {
					return 0, err
				}
				return len(modules), nil
			}, 5*time.Second, 100*time.Millisecond).Should(Equal(3))

			resp, err = serverHelper.Get("/modules/20?items=senior-go-developer", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("should keep serving the last valid configuration", func() {
			opts.Modules = []helpers.Module{{ID: 30, Type: "jobscalendar", Archives: []int64{1}}}
			helpers.WriteConfigYAML(tempDir, opts)

			Consistently(func() (int, error) {
				resp, err := serverHelper.Get("/modules/10", "")
				if err != nil {
					return 0, err
				}
				return resp.StatusCode, nil
			}, time.Second, 100*time.Millisecond).Should(Equal(http.StatusOK))
		})
	})

	Context("with a rate limit", func() {
		BeforeEach(func() {
			tempDir = createTempDir("ratelimit-test-")
			configFile := helpers.WriteConfigYAML(tempDir, helpers.ConfigOptions{
				Modules:   helpers.DefaultModules(),
				RateLimit: 0.001,
			})

			serverHelper = helpers.NewServerTestHelper(ctx, configFile)
			Expect(serverHelper.StartServer()).To(Succeed())
			serverHelper.WaitForServerReady(10 * time.Second)
		})

		It("should throttle front-end requests but not health checks", func() {
			resp, err := serverHelper.Get("/modules", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			resp, err = serverHelper.Get("/modules", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusTooManyRequests))

			resp, err = serverHelper.Get("/health", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})
})
