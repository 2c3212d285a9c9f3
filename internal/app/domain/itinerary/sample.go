package itinerary

import "github.com/EthanH9977/JourneyXPro/internal/app/models"

// SampleRequest and SamplePlan back the "load sample trip" action, which lets
// the front end render an itinerary without spending a model call.
func SampleRequest() models.TripRequest {
	return models.TripRequest{
		Destination:   "日本京都",
		StartDate:     "2024-04-01",
		EndDate:       "2024-04-05",
		Members:       "2位成人",
		MustVisit:     "清水寺、嵐山、金閣寺",
		Accommodation: "京都車站附近飯店",
		Preferences:   "喜歡歷史文化，步調輕鬆",
	}
}

func at(lat, lng float64, name string) *models.GeoPoint {
	return &models.GeoPoint{Lat: lat, Lng: lng, Name: name}
}

func SamplePlan() models.TripPlan {
	return models.TripPlan{
		TripTitle:           "京都古都巡禮五日遊",
		Destination:         "日本京都",
		Duration:            "5天4夜",
		TotalBudgetEstimate: "約 50,000 TWD (不含機票)",
		VisualVibe:          models.VibeHistorical,
		GeneralTips: []string{
			"京都市區巴士一日券非常划算，建議購買。",
			"參觀寺廟請保持安靜，部分區域禁止攝影。",
			"早起可以避開熱門景點的人潮。",
		},
		Days: []models.DayPlan{
			{
				Day:     1,
				Date:    "2024-04-01",
				Theme:   "抵達與車站周邊探索",
				Summary: "抵達京都，入住飯店，探索京都車站周邊現代與傳統的融合。",
				Activities: []models.Activity{
					{Time: "14:00", Title: "抵達京都車站", Description: "搭乘 Haruka 特急抵達京都車站，欣賞現代化建築設計。", Type: models.ActivityTransport, Location: at(34.9858, 135.7588, "京都車站")},
					{Time: "15:30", Title: "飯店 Check-in", Description: "前往飯店辦理入住手續，放置行李。", Type: models.ActivityRest, Location: at(34.9858, 135.7588, "京都車站附近飯店")},
					{Time: "17:00", Title: "京都塔展望台", Description: "登上京都塔俯瞰京都市景，欣賞夕陽。", Type: models.ActivitySightseeing, Location: at(34.9875, 135.7594, "京都塔")},
					{Time: "19:00", Title: "拉麵小路晚餐", Description: "在京都車站拉麵小路品嚐來自日本各地的拉麵。", Type: models.ActivityFood, Location: at(34.9858, 135.7588, "京都拉麵小路")},
				},
			},
			{
				Day:     2,
				Date:    "2024-04-02",
				Theme:   "清水寺與祇園風情",
				Summary: "探訪世界遺產清水寺，漫步二年坂、三年坂，感受祇園古街氛圍。",
				Activities: []models.Activity{
					{Time: "09:00", Title: "清水寺參拜", Description: "參觀著名的清水舞台，祈求良緣與健康。", Type: models.ActivitySightseeing, Location: at(34.9949, 135.7850, "清水寺")},
					{Time: "11:30", Title: "二三年坂散策", Description: "漫步於古色古香的街道，選購傳統工藝品與伴手禮。", Type: models.ActivityShopping, Location: at(34.9965, 135.7820, "三年坂")},
					{Time: "13:00", Title: "湯豆腐午餐", Description: "品嚐京都著名的湯豆腐料理，享受清淡優雅的風味。", Type: models.ActivityFood, Location: at(34.9910, 135.7790, "奧丹清水")},
					{Time: "15:00", Title: "八坂神社", Description: "參訪祇園的守護神社，感受熱鬧的氣氛。", Type: models.ActivitySightseeing, Location: at(35.0037, 135.7785, "八坂神社")},
					{Time: "17:00", Title: "花見小路", Description: "運氣好的話可以看到藝妓穿梭於茶屋之間。", Type: models.ActivitySightseeing, Location: at(35.0010, 135.7750, "花見小路")},
				},
			},
			{
				Day:     3,
				Date:    "2024-04-03",
				Theme:   "嵐山竹林與小火車",
				Summary: "前往嵐山地區，搭乘嵯峨野小火車，漫步竹林之道。",
				Activities: []models.Activity{
					{Time: "09:00", Title: "嵯峨野小火車", Description: "搭乘復古小火車欣賞保津川峽谷美景。", Type: models.ActivitySightseeing, Location: at(35.0170, 135.6810, "嵯峨野小火車")},
					{Time: "10:30", Title: "嵐山竹林之道", Description: "漫步於高聳的竹林中，聆聽風吹過竹葉的聲音。", Type: models.ActivitySightseeing, Location: at(35.0170, 135.6730, "竹林之道")},
					{Time: "12:00", Title: "野宮神社", Description: "祈求學業進步與良緣的古老神社。", Type: models.ActivitySightseeing, Location: at(35.0178, 135.6745, "野宮神社")},
					{Time: "13:30", Title: "渡月橋與嵐山大街", Description: "欣賞渡月橋美景，品嚐嵐山大街的抹茶甜點。", Type: models.ActivityFood, Location: at(35.0130, 135.6770, "渡月橋")},
				},
			},
		},
	}
}
