package catalog

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vnhistory/tour3d/internal/geo"
)

// Site ids with a hand-built diorama.
const (
	DienBienPhu = "dien-bien-phu"
	BaDinh      = "ba-dinh"
	Saigon1975  = "saigon-1975"
	KimLien     = "kim-lien"
	DoiMoi1986  = "doi-moi-1986"
)

func kf(x, y, z, duration float64) Keyframe {
	return Keyframe{Position: mgl64.Vec3{x, y, z}, Duration: duration, Ease: "power2.inOut"}
}

// Defaults returns the built-in tour in chronological order of the
// narrative.
func Defaults() []Site {
	return []Site{
		{
			ID:               DienBienPhu,
			Name:             "Điện Biên Phủ",
			Year:             1954,
			Coordinates:      geo.Coordinate{Lat: 21.3891, Lng: 103.0178, Alt: 500},
			Title:            "Chiến thắng Điện Biên Phủ",
			Subtitle:         "Lừng lẫy năm châu, chấn động địa cầu",
			Description:      "Chiến dịch Điện Biên Phủ (13/3 - 7/5/1954) kết thúc 9 năm kháng chiến chống thực dân Pháp.",
			Color:            "#ff4444",
			MarkerType:       MarkerBattle,
			CameraPath:       []Keyframe{kf(0, 100, 200, 3), kf(-50, 50, 100, 2), kf(0, 30, 80, 2)},
			IllustrationType: "dien-bien-phu",
		},
		{
			ID:               BaDinh,
			Name:             "Quảng trường Ba Đình",
			Year:             1945,
			Coordinates:      geo.Coordinate{Lat: 21.0368, Lng: 105.8342, Alt: 10},
			Title:            "Tuyên ngôn Độc lập",
			Subtitle:         "Ngày đất nước ra đời",
			Description:      "Ngày 2/9/1945 tại Quảng trường Ba Đình, Chủ tịch Hồ Chí Minh đọc Tuyên ngôn Độc lập.",
			Color:            "#ffcc00",
			MarkerType:       MarkerMonument,
			CameraPath:       []Keyframe{kf(-100, 80, 150, 3), kf(0, 60, 120, 2)},
			IllustrationType: "ba-dinh",
		},
		{
			ID:               Saigon1975,
			Name:             "Sài Gòn",
			Year:             1975,
			Coordinates:      geo.Coordinate{Lat: 10.7769, Lng: 106.7009, Alt: 20},
			Title:            "Đại thắng Mùa Xuân 1975",
			Subtitle:         "Non sông thu về một mối",
			Description:      "Ngày 30/4/1975 chiến dịch Hồ Chí Minh toàn thắng, đất nước thống nhất.",
			Color:            "#00ff88",
			MarkerType:       MarkerCity,
			CameraPath:       []Keyframe{kf(100, 70, 180, 3), kf(50, 40, 100, 2), kf(0, 25, 70, 2)},
			IllustrationType: "saigon-1975",
		},
		{
			ID:               KimLien,
			Name:             "Làng Kim Liên",
			Year:             1890,
			Coordinates:      geo.Coordinate{Lat: 19.0833, Lng: 105.4167, Alt: 50},
			Title:            "Quê hương Bác Hồ",
			Subtitle:         "Nơi sinh của Chủ tịch Hồ Chí Minh",
			Description:      "Làng Kim Liên, huyện Nam Đàn, Nghệ An, nơi sinh của Chủ tịch Hồ Chí Minh ngày 19/5/1890.",
			Color:            "#ff8800",
			MarkerType:       MarkerMonument,
			CameraPath:       []Keyframe{kf(-80, 60, 140, 3), kf(-40, 40, 90, 2)},
			IllustrationType: "ho-chi-minh",
		},
		{
			ID:               DoiMoi1986,
			Name:             "Hà Nội",
			Year:             1986,
			Coordinates:      geo.Coordinate{Lat: 21.0278, Lng: 105.8342, Alt: 10},
			Title:            "Đổi Mới",
			Subtitle:         "Bước ngoặt lịch sử",
			Description:      "Tháng 12/1986, Đại hội Đảng lần thứ VI đề ra đường lối đổi mới toàn diện.",
			Color:            "#00ccff",
			MarkerType:       MarkerCity,
			CameraPath:       []Keyframe{kf(90, 75, 160, 3), kf(45, 50, 110, 2)},
			IllustrationType: "doi-moi",
		},
	}
}
