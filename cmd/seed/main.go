package main

import (
	"time"

	"github.com/maplenest/internal/config"
	"github.com/maplenest/internal/logger"
	"github.com/maplenest/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "沙发",
				"zh-TW": "沙發",
				"en-US": "Sofas",
			}),
			Slug:      "sofas",
			SortOrder: 10,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "餐桌餐椅",
				"zh-TW": "餐桌餐椅",
				"en-US": "Dining",
			}),
			Slug:      "dining",
			SortOrder: 20,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "卧室家具",
				"zh-TW": "臥室家具",
				"en-US": "Bedroom",
			}),
			Slug:      "bedroom",
			SortOrder: 30,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "收纳储物",
				"zh-TW": "收納儲物",
				"en-US": "Storage",
			}),
			Slug:      "storage",
			SortOrder: 40,
		},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"sofas", "dining", "bedroom", "storage"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}
	sofasID := categoryIDs["sofas"]
	diningID := categoryIDs["dining"]
	bedroomID := categoryIDs["bedroom"]
	storageID := categoryIDs["storage"]

	// 添加商品
	products := []models.Product{
		{
			TitleJSON: models.JSON(map[string]interface{}{
				"zh-CN": "北欧三人布艺沙发",
				"zh-TW": "北歐三人布藝沙發",
				"en-US": "Nordic 3-Seat Fabric Sofa",
			}),
			Slug: "nordic-fabric-sofa",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "高回弹海绵坐垫，可拆洗棉麻面料，实木框架",
				"zh-TW": "高回彈海綿坐墊，可拆洗棉麻面料，實木框架",
				"en-US": "High resilience foam cushions, removable linen covers, solid wood frame",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(2999.00)),
			CategoryID:  sofasID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1555041469-a586c61ea9bc?w=800",
			}),
			Material:   "布艺/橡木",
			Dimensions: "210x88x85",
			StockTotal: 50,
			IsActive:   true,
			SortOrder:  10,
		},
		{
			TitleJSON: models.JSON(map[string]interface{}{
				"zh-CN": "胡桃木实木餐桌",
				"zh-TW": "胡桃木實木餐桌",
				"en-US": "Walnut Dining Table",
			}),
			Slug: "walnut-dining-table",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "北美黑胡桃木，环保木蜡油涂装，可坐六人",
				"zh-TW": "北美黑胡桃木，環保木蠟油塗裝，可坐六人",
				"en-US": "North American black walnut with hardwax oil finish, seats six",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(4580.00)),
			CategoryID:  diningID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1617806118233-18e1de247200?w=800",
			}),
			Material:   "胡桃木",
			Dimensions: "160x80x75",
			StockTotal: 20,
			IsActive:   true,
			SortOrder:  10,
		},
		{
			TitleJSON: models.JSON(map[string]interface{}{
				"zh-CN": "橡木双人床架",
				"zh-TW": "橡木雙人床架",
				"en-US": "Oak Queen Bed Frame",
			}),
			Slug: "oak-queen-bed",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "白橡木床架，榫卯结构，承重稳固",
				"zh-TW": "白橡木床架，榫卯結構，承重穩固",
				"en-US": "White oak frame with mortise and tenon joinery",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(3680.00)),
			CategoryID:  bedroomID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1505693416388-ac5ce068fe85?w=800",
			}),
			Material:   "橡木",
			Dimensions: "215x158x100",
			StockTotal: 30,
			IsActive:   true,
			SortOrder:  10,
		},
		{
			TitleJSON: models.JSON(map[string]interface{}{
				"zh-CN": "竹编收纳柜",
				"zh-TW": "竹編收納櫃",
				"en-US": "Rattan Storage Cabinet",
			}),
			Slug: "rattan-storage-cabinet",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "手工竹编柜门，透气防潮，适合玄关与客厅",
				"zh-TW": "手工竹編櫃門，透氣防潮，適合玄關與客廳",
				"en-US": "Handwoven rattan doors, breathable and moisture resistant",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(1280.00)),
			CategoryID:  storageID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1595428774223-ef52624120d2?w=800",
			}),
			Material:   "竹藤/松木",
			Dimensions: "80x40x120",
			StockTotal: 0,
			IsActive:   true,
			SortOrder:  10,
		},
	}

	productIDs := map[string]uint{}
	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
				continue
			}
			stdLog.Printf("Created product: %s", product.Slug)
			productIDs[product.Slug] = product.ID
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
			productIDs[product.Slug] = existing.ID
		}
	}

	// 添加沙发规格
	if sofaID, ok := productIDs["nordic-fabric-sofa"]; ok {
		variants := []models.ProductVariant{
			{
				ProductID:   sofaID,
				VariantCode: "gray-linen",
				NameJSON: models.JSON(map[string]interface{}{
					"zh-CN": "雾灰色棉麻",
					"zh-TW": "霧灰色棉麻",
					"en-US": "Mist Gray Linen",
				}),
				PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(2999.00)),
				StockTotal:  30,
				IsActive:    true,
				SortOrder:   10,
			},
			{
				ProductID:   sofaID,
				VariantCode: "green-velvet",
				NameJSON: models.JSON(map[string]interface{}{
					"zh-CN": "墨绿色丝绒",
					"zh-TW": "墨綠色絲絨",
					"en-US": "Forest Green Velvet",
				}),
				PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(3299.00)),
				StockTotal:  20,
				IsActive:    true,
				SortOrder:   20,
			},
		}
		for _, variant := range variants {
			var existing models.ProductVariant
			if err := models.DB.Where("product_id = ? AND variant_code = ?", variant.ProductID, variant.VariantCode).First(&existing).Error; err != nil {
				if err := models.DB.Create(&variant).Error; err != nil {
					stdLog.Printf("Failed to create variant %s: %v", variant.VariantCode, err)
				} else {
					stdLog.Printf("Created variant: %s", variant.VariantCode)
				}
			} else {
				stdLog.Printf("Variant already exists: %s", variant.VariantCode)
			}
		}
	}

	// 添加优惠码
	now := time.Now()
	endOfSeason := now.AddDate(0, 3, 0)
	promoCodes := []models.PromoCode{
		{
			Code:           "WELCOME10",
			DiscountType:   "percentage",
			DiscountValue:  models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			MinOrderAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
			UsageLimit:     1000,
			IsActive:       true,
			StartsAt:       &now,
			EndsAt:         &endOfSeason,
		},
		{
			Code:              "SPRING200",
			DiscountType:      "fixed",
			DiscountValue:     models.NewMoneyFromDecimal(decimal.NewFromInt(200)),
			MinOrderAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(2000)),
			UsageLimit:        200,
			UsageLimitPerUser: 1,
			IsActive:          true,
			StartsAt:          &now,
			EndsAt:            &endOfSeason,
		},
	}
	for _, promo := range promoCodes {
		var existing models.PromoCode
		if err := models.DB.Where("code = ?", promo.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&promo).Error; err != nil {
				stdLog.Printf("Failed to create promo code %s: %v", promo.Code, err)
			} else {
				stdLog.Printf("Created promo code: %s", promo.Code)
			}
		} else {
			stdLog.Printf("Promo code already exists: %s", promo.Code)
		}
	}

	stdLog.Printf("Seed data completed")
}
