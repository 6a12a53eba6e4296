package db

import (
	"time"

	"github.com/diewo77/gleeful/internal/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Default administrator account created on first start.
const (
	AdminUsername = "admin"
	AdminEmail    = "admin@gleeful.ru"
	adminPassword = "admin"
)

const placeholder = "https://via.placeholder.com/400x300/FFD700/FFFFFF?text="

func seedServices() []models.Service {
	svc := func(title, desc string, price int64, c models.Category, img string) models.Service {
		return models.Service{Title: title, Description: desc, Price: decimal.NewFromInt(price), Category: c, ImageURL: placeholder + img}
	}
	return []models.Service{
		svc("Детский День Рождения",
			"Полная организация детского дня рождения с аниматорами, шоу-программой и праздничным тортом. Включает украшение помещения шарами и фотосессию.",
			15000, models.CategoryChild, "Gleeful+День+Рождения"),
		svc("Свадебная церемония",
			"Роскошная свадебная церемония под ключ. Организация выезда молодоженов, банкет, ведущий и развлекательная программа.",
			50000, models.CategoryAdult, "Gleeful+Свадьба"),
		svc("Корпоративный Новый Год",
			"Новогодняя корпоративная вечеринка с подарками для сотрудников, банкетом, ведущим и развлекательной программой.",
			80000, models.CategoryCorporate, "Gleeful+Новый+Год"),
		svc("Аниматоры для детей",
			"Профессиональные аниматоры с костюмами любимых персонажей. Интерактивные игры, фокусы и музыкальное сопровождение.",
			5000, models.CategoryChild, "Gleeful+Аниматоры"),
		svc("Фотосессия на празднике",
			"Профессиональный фотограф на вашем празднике. Создание живых и ярких моментов, обработка и доставка фотографий.",
			10000, models.CategoryAdult, "Gleeful+Фотосессия"),
		svc("Оформление зала шарами",
			"Художественное оформление помещения воздушными шарами различной формы и размера. Создание уникальной атмосферы праздника.",
			8000, models.CategoryChild, "Gleeful+Шары"),
		svc("Тимбилдинг мероприятие",
			"Командообразующие мероприятия для корпоративных клиентов. Развивающие игры и конкурсы для сплочения коллектива.",
			35000, models.CategoryCorporate, "Gleeful+Тимбилдинг"),
	}
}

func seedNews(now time.Time) []models.News {
	day := 24 * time.Hour
	return []models.News{
		{
			Title:      "Открытие нового сезона на gleeful.ru!",
			Content:    "Gleeful рад объявить об открытии нового сезона! Твоя территория радости станет еще ярче. Специальные предложения для постоянных клиентов gleeful.ru.",
			ImageURL:   placeholder + "Gleeful+Новый+сезон",
			DatePosted: now.Add(-5 * day),
		},
		{
			Title:      "Скидка 20% на детские праздники в марте на gleeful.ru",
			Content:    "Только в марте! Получите скидку 20% на все детские праздники Gleeful. Твоя территория радости стала еще доступнее! Аниматоры, шоу-программы - все по специальной цене.",
			ImageURL:   placeholder + "Gleeful+Скидка+20%25",
			DatePosted: now.Add(-10 * day),
		},
		{
			Title:      "Новая услуга Gleeful: организация выпускных",
			Content:    "Gleeful добавил новую услугу - организация выпускных вечеров! Твоя территория радости расширяется. Профессиональная фото и видеосъемка, ведущий, дискотека на gleeful.ru.",
			ImageURL:   placeholder + "Gleeful+Выпускной",
			DatePosted: now.Add(-2 * day),
		},
		{
			Title:      "Отзывы клиентов Gleeful: более 500 довольных семей!",
			Content:    "Благодарим всех клиентов Gleeful за доверие! Твоя территория радости уже посетила более 500 счастливых семей. Только положительные отзывы на gleeful.ru!",
			ImageURL:   placeholder + "Gleeful+500+клиентов",
			DatePosted: now.Add(-1 * day),
		},
	}
}

// Seed creates the admin account and, on an empty catalog, the starter
// services and news. Safe to run on every start.
func Seed(conn *gorm.DB) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		err := tx.Where("username = ?", AdminUsername).First(&admin).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			hash, herr := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if herr != nil {
				return errors.Wrap(herr, "hash admin password")
			}
			admin = models.User{Username: AdminUsername, Email: AdminEmail, PasswordHash: string(hash), IsAdmin: true}
			if err := tx.Create(&admin).Error; err != nil {
				return errors.Wrap(err, "create admin")
			}
			log.WithField("username", AdminUsername).Info("admin account created")
		case err != nil:
			return errors.Wrap(err, "lookup admin")
		}

		var count int64
		if err := tx.Model(&models.Service{}).Count(&count).Error; err != nil {
			return errors.Wrap(err, "count services")
		}
		if count == 0 {
			services := seedServices()
			if err := tx.Create(&services).Error; err != nil {
				return errors.Wrap(err, "seed services")
			}
			log.WithField("count", len(services)).Info("services seeded")
		}

		if err := tx.Model(&models.News{}).Count(&count).Error; err != nil {
			return errors.Wrap(err, "count news")
		}
		if count == 0 {
			news := seedNews(time.Now().UTC())
			if err := tx.Create(&news).Error; err != nil {
				return errors.Wrap(err, "seed news")
			}
			log.WithField("count", len(news)).Info("news seeded")
		}
		return nil
	})
}
