package main

import (
	"fmt"

	"github.com/dairydrop/internal/config"
	"github.com/dairydrop/internal/logger"
	"github.com/dairydrop/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
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

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	categories := []models.Category{
		{Name: "Milk", Slug: "milk", Description: "Fresh cow and buffalo milk", SortOrder: 100, IsActive: true},
		{Name: "Curd & Buttermilk", Slug: "curd-buttermilk", Description: "Set curd, probiotic curd and spiced buttermilk", SortOrder: 90, IsActive: true},
		{Name: "Paneer & Ghee", Slug: "paneer-ghee", Description: "Malai paneer and pure desi ghee", SortOrder: 80, IsActive: true},
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

	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"milk", "curd-buttermilk", "paneer-ghee"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}
	milkID := categoryIDs["milk"]
	curdID := categoryIDs["curd-buttermilk"]
	paneerID := categoryIDs["paneer-ghee"]

	discount55 := models.NewMoneyFromInt(55)
	products := []models.Product{
		{
			Name:          "Full Cream Cow Milk",
			Slug:          "full-cream-cow-milk-1l",
			Description:   "Farm-fresh full cream cow milk, pasteurized and chilled the same morning.",
			Unit:          "1L",
			Price:         models.NewMoneyFromInt(60),
			StockQuantity: 100,
			CategoryID:    milkID,
			Images:        models.StringArray([]string{"/uploads/products/cow-milk-1l.jpg"}),
			SortOrder:     100,
		},
		{
			Name:          "Toned Milk",
			Slug:          "toned-milk-500ml",
			Description:   "Light toned milk for everyday tea and coffee.",
			Unit:          "500ml",
			Price:         models.NewMoneyFromInt(30),
			StockQuantity: 150,
			CategoryID:    milkID,
			Images:        models.StringArray([]string{"/uploads/products/toned-milk-500ml.jpg"}),
			SortOrder:     90,
		},
		{
			Name:          "Buffalo Milk",
			Slug:          "buffalo-milk-1l",
			Description:   "Thick buffalo milk, ideal for curd and kheer.",
			Unit:          "1L",
			Price:         models.NewMoneyFromInt(75),
			DiscountPrice: nil,
			StockQuantity: 60,
			CategoryID:    milkID,
			Images:        models.StringArray([]string{"/uploads/products/buffalo-milk-1l.jpg"}),
			SortOrder:     80,
		},
		{
			Name:          "Set Curd",
			Slug:          "set-curd-400g",
			Description:   "Thick set curd made from full cream milk.",
			Unit:          "400g",
			Price:         models.NewMoneyFromInt(45),
			StockQuantity: 80,
			CategoryID:    curdID,
			Images:        models.StringArray([]string{"/uploads/products/set-curd-400g.jpg"}),
			SortOrder:     70,
		},
		{
			Name:          "Masala Buttermilk",
			Slug:          "masala-buttermilk-500ml",
			Description:   "Spiced buttermilk churned fresh every morning.",
			Unit:          "500ml",
			Price:         models.NewMoneyFromInt(25),
			StockQuantity: 40,
			CategoryID:    curdID,
			Images:        models.StringArray([]string{"/uploads/products/masala-buttermilk.jpg"}),
			SortOrder:     60,
		},
		{
			Name:          "Malai Paneer",
			Slug:          "malai-paneer-200g",
			Description:   "Soft malai paneer, cut and packed to order.",
			Unit:          "200g",
			Price:         models.NewMoneyFromInt(95),
			DiscountPrice: &discount55,
			StockQuantity: 30,
			CategoryID:    paneerID,
			Images:        models.StringArray([]string{"/uploads/products/malai-paneer-200g.jpg"}),
			SortOrder:     50,
		},
		{
			Name:          "Desi Ghee",
			Slug:          "desi-ghee-500ml",
			Description:   "Slow-cooked desi ghee from cultured butter.",
			Unit:          "500ml",
			Price:         models.NewMoneyFromInt(450),
			StockQuantity: 20,
			CategoryID:    paneerID,
			Images:        models.StringArray([]string{"/uploads/products/desi-ghee-500ml.jpg"}),
			SortOrder:     40,
		},
	}

	for _, prod := range products {
		if prod.CategoryID == 0 {
			stdLog.Printf("Skip product %s: category_id missing", prod.Slug)
			continue
		}
		prod.Status = models.DeriveStatus(prod.Status, prod.StockQuantity)
		var existing models.Product
		if err := models.DB.Where("slug = ?", prod.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Slug)
			}
		} else {
			existing.Name = prod.Name
			existing.Description = prod.Description
			existing.Unit = prod.Unit
			existing.Price = prod.Price
			existing.DiscountPrice = prod.DiscountPrice
			existing.CategoryID = prod.CategoryID
			existing.Images = prod.Images
			existing.SortOrder = prod.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update product %s: %v", prod.Slug, err)
			} else {
				stdLog.Printf("Updated product: %s", prod.Slug)
			}
		}
	}

	boys := []struct {
		Name     string
		Phone    string
		Password string
		Areas    []string
		Shifts   []string
	}{
		{Name: "Ravi Kumar", Phone: "9876500001", Password: "ravi@dairy1", Areas: []string{"Sector 12", "Sector 14"}, Shifts: []string{"morning"}},
		{Name: "Suresh Yadav", Phone: "9876500002", Password: "suresh@dairy1", Areas: []string{"Green Park"}, Shifts: []string{"morning", "evening"}},
	}

	for _, plan := range boys {
		var existing models.DeliveryBoy
		if err := models.DB.Where("phone = ?", plan.Phone).First(&existing).Error; err == nil {
			stdLog.Printf("Delivery boy already exists: %s", plan.Phone)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(plan.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Printf("Failed to hash password for %s: %v", plan.Phone, err)
			continue
		}
		boy := models.DeliveryBoy{
			Name:         plan.Name,
			Phone:        plan.Phone,
			PasswordHash: string(hash),
			Areas:        models.StringArray(plan.Areas),
			Shifts:       models.StringArray(plan.Shifts),
			IsActive:     true,
		}
		if err := models.DB.Create(&boy).Error; err != nil {
			stdLog.Printf("Failed to create delivery boy %s: %v", plan.Phone, err)
		} else {
			stdLog.Printf("Created delivery boy: %s (%s)", plan.Name, plan.Phone)
		}
	}

	fmt.Println("\nSeed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 7 Products")
	fmt.Println("- 2 Delivery boys")
}
