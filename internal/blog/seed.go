package blog

import "github.com/UgurOz1/portfolyo/internal/models"

// DefaultSeed returns the posts shown when the store is empty or unreachable.
// A fresh slice is returned on every call.
func DefaultSeed() []models.Post {
	return []models.Post{
		{
			ID:    "react-performans-ipuclari",
			Title: "React + TypeScript ile performans ipuçları",
			Date:  "2025-05-01",
			Tags:  []string{"React", "TypeScript", "Performans"},
			Excerpt: "Memoization, kod bölme ve uygun durum yönetimi ile arayüzlerinizi nasıl " +
				"hızlandırabileceğinizi anlatıyorum.",
			Content: "Bileşenlerin yeniden render edilme sayısını azaltmak için useMemo/useCallback ve " +
				"React.memo kullanımı, dinamik import ile kod bölme, liste renderlarında key ve sanal " +
				"listeleme gibi yöntemleri uygulamak büyük fark yaratır. Ayrıca server state ile client " +
				"state ayrımını netleştirmek uygulamayı sadeleştirir.",
		},
		{
			ID:      "tailwind-ile-tasarim-sistemi",
			Title:   "Tailwind CSS ile tasarım sistemi kurmak",
			Date:    "2025-04-10",
			Tags:    []string{"Tailwind", "Design System"},
			Excerpt: "Token tabanlı renkler, tipografi ölçekleri ve yardımcı sınıflarla tutarlı bir sistem kurma yaklaşımı.",
			Content: "Renkler, aralıklar ve tipografi gibi temel tasarım tokenlarını tailwind.config içinde " +
				"genişletmek; bileşenlere anlamlı yardımcı sınıflar atamak ve varyantları (hover, focus, " +
				"aria) standartlaştırmak hızlı ve tutarlı arayüz üretir.",
		},
		{
			ID:      "vite-ile-hizli-gelistirme",
			Title:   "Vite ile hızlı geliştirme deneyimi",
			Date:    "2025-03-15",
			Tags:    []string{"Vite", "Build Tools", "Developer Experience"},
			Excerpt: "ES modules tabanlı bundler ile geliştirme sürecini nasıl hızlandırabileceğinizi gösteriyorum.",
			Content: "Vite, geliştirme sunucusunda ES modules kullanarak sadece değişen dosyaları yeniden " +
				"yükler. Bu sayede büyük projelerde bile hot reload süresi milisaniyeler seviyesinde kalır. " +
				"Production build için Rollup kullanarak optimize edilmiş bundle üretir.",
		},
	}
}
