package mockapi

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/utils"
)

// dataset is the mutable state behind the mock routes. It is guarded by
// Server.mu.
type dataset struct {
	stores      []api.Store
	statuses    []api.StoreStatus
	tablets     map[string][]api.Tablet
	logs        []api.LogEntry
	alerts      []api.Alert
	activities  []api.Activity
	trend       []api.TrendDay
	performance api.Performance
	efficiency  float64

	smsHourly   []api.HourlyBucket
	smsApproval []api.ApprovalType
	smsIssues   []api.SMSIssue
	smsUptime   string

	reportTypes  []api.ReportType
	reports      []api.Report
	nextReportID int

	profile       api.Profile
	notifications api.NotificationSettings
	dashboard     api.DashboardSettings
	apiKeys       []api.APIKey
}

type storeSeed struct {
	code, name, address, status string
	active                      bool
	customers, errors           int
	idle                        time.Duration
	tablets                     int
}

var storeSeeds = []storeSeed{
	{"E014", "Enderpark Adana", "Kurtuluş, Atatürk Cad. No:41/A, 01120 Seyhan/Adana", "active", true, 12, 0, 2 * time.Minute, 2},
	{"Y013", "Adana YeniKoza", "Tepebağ, Çakmak Cd. No:92, 01010 Seyhan/Adana", "active", true, 8, 1, 5 * time.Minute, 2},
	{"Y261", "Ender Eskişehir", "İstiklal, İki Eylül Cd. No:18, 26010 Odunpazarı/Eskişehir", "warning", true, 3, 2, 15 * time.Minute, 2},
	{"Y332", "YeniKoza Mersin", "Cami Şerif, Kuvayi Milliye Cd. 28 A, 33060 Akdeniz/Mersin", "active", true, 15, 0, time.Minute, 3},
	{"Y342", "Ender Bakırköy", "Cevizlik, İstanbul Cd. No:61 D:61, 34142 Bakırköy/İstanbul", "error", false, 0, 5, 45 * time.Minute, 2},
	{"Y421", "YeniKoza Konya", "Sahibiata, Mimar Muzaffer Cd. No:45, 42040 Meram/Konya", "active", true, 9, 0, 3 * time.Minute, 1},
}

type logSeed struct {
	ago                      time.Duration
	level, category, message string
	storeCode, storeName     string
	data                     string
}

var logSeeds = []logSeed{
	{10 * time.Minute, "ERROR", "CUSTOMER_CREATE", "API connection timeout", "Y342", "Ender Bakırköy", `{"errorCode":500,"timeout":true,"apiEndpoint":"/api/createCustomer"}`},
	{25 * time.Minute, "WARNING", "SMS_APPROVAL", "SMS response time exceeded 5 seconds", "Y261", "Ender Eskişehir", `{"responseTime":6.8,"phoneNumber":"905*****23"}`},
	{time.Hour, "ERROR", "VALIDATION", "Phone number validation failed", "Y013", "Adana YeniKoza", `{"phoneNumber":"905*****45","validationError":"Phone already registered with different TC"}`},
	{2 * time.Hour, "INFO", "CUSTOMER_CREATE", "Customer created successfully", "E014", "Enderpark Adana", `{"customerId":"C123456","processingTime":1.8}`},
	{3 * time.Hour, "ERROR", "CUSTOMER_CREATE", "Database connection failed", "Y342", "Ender Bakırköy", `{"dbError":"Connection timeout after 30 seconds","retryCount":3}`},
	{15 * time.Minute, "ERROR", "CUSTOMER_VALIDATION", "TC kimlik numarası doğrulama başarısız", "Y332", "YeniKoza Mersin", `{"tcNumber":"123*****890","validationError":"TC kimlik numarası geçersiz","attemptCount":2}`},
	{20 * time.Minute, "WARNING", "CUSTOMER_VALIDATION", "Müşteri bilgileri eksik", "Y013", "Adana YeniKoza", `{"missingFields":["dateOfBirth","address"],"customerInfo":"Partial data received"}`},
	{30 * time.Minute, "ERROR", "CUSTOMER_VALIDATION", "Kişi zaten sistemde mevcut", "E014", "Enderpark Adana", `{"existingCustomerId":"C654321","duplicateFields":["tcNumber","phoneNumber"],"action":"rejected"}`},
	{45 * time.Minute, "INFO", "CUSTOMER_VALIDATION", "Müşteri kontrolü başarılı", "Y421", "YeniKoza Konya", `{"validationTime":1.2,"result":"approved"}`},
	{time.Hour, "WARNING", "CUSTOMER_VALIDATION", "Müşteri yaş kontrolü uyarısı", "Y261", "Ender Eskişehir", `{"customerAge":17,"minRequiredAge":18,"action":"requires_guardian_approval"}`},
	{50 * time.Minute, "ERROR", "TABLET", "Tablet kayıtlı değil", api.UnknownStore, api.UnknownStore, `{"deviceId":"TAB-UNREG-01"}`},
	{26 * time.Hour, "INFO", "CUSTOMER_CREATE", "Customer created successfully", "Y332", "YeniKoza Mersin", `{"customerId":"C223344"}`},
	{27 * time.Hour, "ERROR", "CUSTOMER_CREATE", "Kişi zaten sistemde mevcut", "Y421", "YeniKoza Konya", `{"rejectionCode":"DUPLICATE"}`},
	{50 * time.Hour, "INFO", "CUSTOMER_CREATE", "Customer created successfully", "Y013", "Adana YeniKoza", `{"customerId":"C998877"}`},
	{20 * 24 * time.Hour, "INFO", "SMS_APPROVAL", "SMS onayı alındı", "E014", "Enderpark Adana", `{"approvalType":"Sözleşme Onayı"}`},
}

func seed(now time.Time) *dataset {
	at := func(ago time.Duration) api.Time { return api.Time{Time: now.Add(-ago).Truncate(time.Second)} }

	d := &dataset{
		tablets:       map[string][]api.Tablet{},
		efficiency:    87.5,
		smsUptime:     "99.9%",
		nextReportID:  3,
		profile:       api.Profile{Name: "Ümit Yılmaz", Email: "admin@yenikoza.com.tr", Role: "Administrator", Phone: "+90 532 000 00 00", Avatar: "👤"},
		notifications: api.DefaultNotificationSettings(),
		dashboard:     api.DefaultDashboardSettings(),
	}

	for i, s := range storeSeeds {
		id := utils.FlexString(strconv.Itoa(i + 1))
		d.stores = append(d.stores, api.Store{ID: id, Code: s.code, Name: s.name, Address: s.address, Status: s.status})
		d.statuses = append(d.statuses, api.StoreStatus{
			StoreCode: s.code, StoreName: s.name, IsActive: s.active,
			TodayCustomers: s.customers, ErrorCount: s.errors,
			LastActivity: at(s.idle), Status: s.status,
		})
		for t := 0; t < s.tablets; t++ {
			online := s.active && s.idle < 10*time.Minute
			d.tablets[s.code] = append(d.tablets[s.code], api.Tablet{
				DeviceID:        s.code + "-TAB-" + strconv.Itoa(t+1),
				CurrentStore:    s.code,
				IsOnline:        online,
				LastSeenMinutes: s.idle.Minutes(),
				LogCount:        s.customers,
				TotalLogCount:   s.customers * 7,
				StatusText:      map[bool]string{true: "Çevrimiçi", false: "Çevrimdışı"}[online],
			})
		}
	}

	for i, l := range logSeeds {
		d.logs = append(d.logs, api.LogEntry{
			ID:        utils.FlexString(strconv.Itoa(i + 1)),
			Timestamp: at(l.ago),
			CreatedAt: at(l.ago),
			Level:     l.level,
			Category:  l.category,
			Message:   l.message,
			StoreCode: l.storeCode,
			StoreName: l.storeName,
			Data:      json.RawMessage(l.data),
		})
	}

	d.alerts = []api.Alert{
		{ID: "1", Type: "critical", Title: "Y342 Mağazası Offline", Message: "Ender Bakırköy mağazası 45 dakikadır yanıt vermiyor", Timestamp: at(45 * time.Minute)},
		{ID: "2", Type: "warning", Title: "SMS Servisi Yavaş", Message: "SMS yanıt süresi ortalama 5 saniyeyi aştı", Timestamp: at(20 * time.Minute)},
		{ID: "3", Type: "error", Title: "E014 Müşteri Oluşturma Hatası", Message: "Son 1 saatte %30 başarısızlık oranı", Timestamp: at(35 * time.Minute), IsRead: true},
	}

	d.activities = []api.Activity{
		{ID: "a1", Type: "customer", Title: "Yeni müşteri kaydı", Details: "Enderpark Adana", Timestamp: at(2 * time.Hour)},
		{ID: "a2", Type: "sms", Description: "SMS onayı alındı", Details: "YeniKoza Mersin", Timestamp: at(90 * time.Minute)},
		{ID: "a3", Type: "error", Title: "Müşteri oluşturma hatası", Details: "Ender Bakırköy", Timestamp: at(10 * time.Minute)},
	}

	trend := [][3]int{{42, 38, 4}, {38, 36, 2}, {45, 43, 2}, {52, 48, 4}, {48, 46, 2}, {41, 39, 2}, {47, 44, 3}}
	for i, v := range trend {
		day := now.AddDate(0, 0, i-len(trend)+1)
		d.trend = append(d.trend, api.TrendDay{
			Date:      day.Format("01-02"),
			Value:     float64(v[0]),
			Customers: v[0],
			Success:   v[1],
			Errors:    v[2],
			CPU:       20 + float64(i),
			Memory:    60 + float64(i),
			Disk:      45,
		})
	}
	d.performance = api.Performance{CPUUsage: 23, MemoryUsage: 68, DiskUsage: 45, NetworkUsage: 12, APIResponseTime: 234, ErrorRate: 2.1, Uptime: 99.8}

	hourly := [][2]int{{5, 5}, {12, 12}, {18, 17}, {22, 21}, {15, 15}, {8, 8}, {25, 24}, {30, 30}, {21, 21}}
	for i, v := range hourly {
		d.smsHourly = append(d.smsHourly, api.HourlyBucket{Hour: strconv.Itoa(8+i) + ":00", Count: v[0], Sent: v[0], Success: v[1]})
	}
	d.smsApproval = []api.ApprovalType{
		{Type: "Sözleşme Onayı", Total: 150, Success: 142, Rate: 94.7, Status: "active"},
		{Type: "KVK Onayı", Status: "inactive"},
		{Type: "Reklam Onayı", Status: "inactive"},
	}
	d.smsIssues = []api.SMSIssue{
		{IssueCode: "SMS_TIMEOUT", IssueCategory: "timeout", IssueTitle: "SMS yanıt zaman aşımı", Count: 3, Stores: []string{"Y261", "Y342"}},
	}

	d.reportTypes = []api.ReportType{
		{ID: "overview", Name: "Genel Bakış", Description: "Genel performans özeti", Icon: "📊"},
		{ID: "customers", Name: "Müşteri Raporu", Description: "Müşteri kayıt istatistikleri", Icon: "👥"},
		{ID: "sms", Name: "SMS Raporu", Description: "SMS onay performansı", Icon: "📱"},
		{ID: "errors", Name: "Hata Raporu", Description: "Hata ve uyarı özeti", Icon: "⚠️"},
		{ID: "stores", Name: "Mağaza Raporu", Description: "Mağaza bazlı performans", Icon: "🏪"},
	}
	d.reports = []api.Report{
		{ID: "1", Name: "Günlük Genel Bakış", ReportType: "overview", Period: api.PeriodDaily, GeneratedAt: at(24 * time.Hour)},
		{ID: "2", Name: "Haftalık SMS Raporu", ReportType: "sms", Period: api.PeriodWeekly, GeneratedAt: at(72 * time.Hour)},
	}

	d.apiKeys = []api.APIKey{
		{ID: "k1", Name: "Tablet Entegrasyonu", Key: "yk_live_****a1b2", Created: at(30 * 24 * time.Hour), LastUsed: at(5 * time.Minute)},
	}
	return d
}
