package routes

import (
	"time"

	"github.com/Sahareior/Shopee-Backend/handlers"
	"github.com/Sahareior/Shopee-Backend/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Shopee API is running",
			"time":    time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Credential endpoints are public but rate limited.
	router.POST("/user/sign-up", middleware.RateLimitMiddleware(), handlers.SignUp)
	router.POST("/user/sign-in", middleware.RateLimitMiddleware(), handlers.SignIn)

	// Catalog reads are public.
	router.GET("/products", handlers.GetAllProducts)
	router.GET("/products/filter", handlers.FilterProducts)
	router.GET("/products/all/:id", handlers.GetProductByID)
	router.GET("/products/:label", handlers.GetProductsByLabel)
	router.GET("/categories", handlers.GetCategories)
	router.GET("/categories/:slug", handlers.GetCategoryBySlug)

	protected := router.Group("/")
	protected.Use(middleware.JWTAuthMiddleware())

	protected.POST("/products", handlers.AddProduct)
	protected.POST("/categories", handlers.AddCategory)

	protected.POST("/cart", handlers.AddToCart)
	protected.GET("/cart", handlers.GetCart)
	protected.GET("/cart/summary", handlers.GetCartSummary)
	protected.PUT("/cart/:itemId", handlers.UpdateCartItem)
	protected.DELETE("/cart/:itemId", handlers.RemoveCartItem)
	protected.DELETE("/cart", handlers.ClearCart)

	protected.POST("/wishlist", handlers.AddToWishlist)
	protected.GET("/wishlist", handlers.GetWishlist)
	protected.DELETE("/wishlist/:itemId", handlers.RemoveFromWishlist)

	protected.POST("/orders", handlers.CreateOrder)
	protected.GET("/orders/all-orders", handlers.GetOrders)

	protected.POST("/recent-view", handlers.RecordRecentView)
	protected.GET("/recent-view", handlers.GetRecentViews)
	protected.GET("/recent-view/:userId", handlers.GetUserRecentViews)

	social := protected.Group("/social")
	social.POST("/create", handlers.CreatePost)
	social.GET("/newsfeed", handlers.GetNewsFeed)
	social.GET("/trending", handlers.GetTrendingPosts)
	social.GET("/saved", handlers.GetSavedPosts)
	social.GET("/hashtag/:hashtag", handlers.GetPostsByHashtag)
	social.GET("/user/:userId", handlers.GetUserPosts)
	social.GET("/:postId", handlers.GetPostByID)
	social.PUT("/:postId", handlers.UpdatePost)
	social.DELETE("/:postId", handlers.DeletePost)
	social.POST("/:postId/react", handlers.ReactToPost)
	social.POST("/:postId/vote", handlers.VoteInPoll)
	social.POST("/:postId/register", handlers.RegisterForEvent)
	social.POST("/:postId/save", handlers.SavePost)
	social.POST("/:postId/share", handlers.SharePost)
	social.POST("/:postId/pin", handlers.TogglePinPost)

	story := protected.Group("/story")
	story.POST("", handlers.CreateStory)
	story.GET("", handlers.GetStoriesFeed)
	story.GET("/media/:storyid", handlers.GetStoryMedia)
	story.GET("/user/:userId", handlers.GetUserStories)
	story.POST("/:storyid/view", handlers.ViewStory)
	story.POST("/:storyid/react", handlers.ReactToStory)
	story.POST("/:storyid/reply", handlers.ReplyToStory)
	story.DELETE("/:storyid", handlers.DeleteStory)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"success": false,
			"error":   "Endpoint not found",
			"path":    c.Request.URL.Path,
		})
	})

	return router
}
